package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/service"
)

// Image uploads are capped well above typical phone photos.
const maxImageSize = 10 << 20 // 10 MiB

type Handlers struct {
	diagnosisService service.DiagnosisService
}

func New(diagnosisService service.DiagnosisService) *Handlers {
	return &Handlers{diagnosisService: diagnosisService}
}

type analyzeJSONRequest struct {
	Image    string `json:"image"`
	CropType string `json:"crop_type"`
}

// Analyze accepts either a multipart upload under the "image" field or
// a JSON body with a base64-encoded "image", plus an optional
// "crop_type" hint, and returns the structured diagnosis.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)

	var (
		image    []byte
		filename string
		cropType string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req analyzeJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		// Tolerate data-URL prefixes from browser canvas exports.
		payload := req.Image
		if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
			payload = payload[idx+1:]
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			response.BadRequest(w, "Image must be base64 encoded")
			return
		}
		image = decoded
		filename = "upload"
		cropType = req.CropType
	} else {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			response.BadRequest(w, "Expected a multipart image upload")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.BadRequest(w, "No image provided")
			return
		}
		defer file.Close()

		image, err = io.ReadAll(file)
		if err != nil {
			response.BadRequest(w, "Could not read the uploaded image")
			return
		}
		filename = header.Filename
		cropType = r.FormValue("crop_type")
	}

	if len(image) == 0 {
		response.BadRequest(w, "Uploaded image is empty")
		return
	}

	result, err := h.diagnosisService.Analyze(r.Context(), image, filename, cropType)
	if err != nil {
		logger.ErrorContext(r.Context(), "analysis failed", "error", err)
		response.InternalError(w, "Analysis failed. Please try again.")
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
