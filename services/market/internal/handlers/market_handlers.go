package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/market/internal/domain"
	"github.com/agriguru/agriguru-backend/services/market/internal/service"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	marketService service.MarketService
}

func New(marketService service.MarketService) *Handlers {
	return &Handlers{marketService: marketService}
}

func (h *Handlers) DatasetInfo(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dataset_info": h.marketService.DatasetInfo(),
	})
}

// CropYields returns historical yield statistics for one crop. An
// unknown crop answers 404 with the list of crops the dataset covers.
func (h *Handlers) CropYields(w http.ResponseWriter, r *http.Request) {
	crop := chi.URLParam(r, "crop")

	name, stats, err := h.marketService.CropYields(crop)
	if err != nil {
		var notFound *domain.YieldNotFoundError
		if errors.As(err, &notFound) {
			response.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
				"error":           "Crop not found",
				"code":            response.CodeNotFound,
				"available_crops": notFound.Available,
			})
			return
		}
		response.InternalError(w, "Could not load yield data")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"crop": name,
		"data": stats,
	})
}

// SampleData returns a small slice of raw dataset records alongside
// the full record count.
func (h *Handlers) SampleData(w http.ResponseWriter, r *http.Request) {
	records := h.marketService.SampleData(20)

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sample_data":   records,
		"total_records": h.marketService.DatasetInfo().TotalRecords,
	})
}

func (h *Handlers) PredictYield(w http.ResponseWriter, r *http.Request) {
	var req domain.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	prediction, err := h.marketService.PredictYield(&req)
	if err != nil {
		if strings.HasPrefix(err.Error(), "validation failed: ") {
			response.BadRequest(w, strings.TrimPrefix(err.Error(), "validation failed: "))
			return
		}
		response.InternalError(w, "Prediction failed")
		return
	}

	response.WriteJSON(w, http.StatusOK, prediction)
}
