package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/domain"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/service"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	officerService service.OfficerService
}

func New(officerService service.OfficerService) *Handlers {
	return &Handlers{officerService: officerService}
}

// ListOfficers returns the whole directory.
func (h *Handlers) ListOfficers(w http.ResponseWriter, r *http.Request) {
	officers, err := h.officerService.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list officers", "error", err)
		response.StorageError(w, "Could not load the officer directory")
		return
	}
	if officers == nil {
		officers = []*domain.Officer{}
	}
	response.WriteJSON(w, http.StatusOK, officers)
}

// NearbyOfficers returns officers within reach of the given point,
// closest first. ?distance bounds the search in km and defaults to 50.
func (h *Handlers) NearbyOfficers(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		response.BadRequest(w, "Invalid coordinates provided")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		response.BadRequest(w, "Invalid coordinates provided")
		return
	}

	maxDistance := domain.DefaultMaxDistance
	if v := r.URL.Query().Get("distance"); v != "" {
		maxDistance, err = strconv.ParseFloat(v, 64)
		if err != nil {
			response.BadRequest(w, "Invalid distance provided")
			return
		}
	}

	nearby, err := h.officerService.Nearby(r.Context(), &domain.NearbyQuery{
		Latitude:    lat,
		Longitude:   lng,
		MaxDistance: maxDistance,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, nearby)
}

func (h *Handlers) GetOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid officer id")
		return
	}

	officer, err := h.officerService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, officer)
}

func (h *Handlers) CreateOfficer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	officer, err := h.officerService.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, officer)
}

func (h *Handlers) UpdateOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid officer id")
		return
	}

	var req domain.UpdateOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	officer, err := h.officerService.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, officer)
}

func (h *Handlers) DeleteOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid officer id")
		return
	}

	if err := h.officerService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOfficerNotFound):
		response.NotFound(w, "Officer not found")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		response.BadRequest(w, strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		logger.ErrorContext(r.Context(), "request failed", "error", err)
		response.StorageError(w, "Something went wrong. Please try again.")
	}
}
