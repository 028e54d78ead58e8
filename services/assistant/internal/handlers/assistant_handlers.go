package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	mw "github.com/agriguru/agriguru-backend/pkg/middleware"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/domain"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/service"
)

type Handlers struct {
	assistantService service.AssistantService
}

func New(assistantService service.AssistantService) *Handlers {
	return &Handlers{assistantService: assistantService}
}

// Chat history is keyed on the user, so these handlers sit behind the
// shared session middleware.
func userID(r *http.Request) int64 {
	return mw.SessionUserID(r)
}

// Chat answers a farming question, optionally enriched with live
// weather and crop condition analysis.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.assistantService.Chat(r.Context(), userID(r), &req)
	if err != nil {
		if strings.HasPrefix(err.Error(), "validation failed: ") {
			response.BadRequest(w, strings.TrimPrefix(err.Error(), "validation failed: "))
			return
		}
		logger.ErrorContext(r.Context(), "chat failed", "error", err)
		response.InternalError(w, "Could not answer right now. Please try again.")
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.assistantService.History(r.Context(), userID(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load history", "error", err)
		response.StorageError(w, "Could not load conversation history")
		return
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	response.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.assistantService.ClearHistory(r.Context(), userID(r)); err != nil {
		logger.ErrorContext(r.Context(), "failed to clear history", "error", err)
		response.StorageError(w, "Could not clear conversation history")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}
