package domain

import (
	"fmt"
	"strings"
)

type PredictRequest struct {
	Crop    string  `json:"crop"`
	Factors Factors `json:"factors"`
}

// Factors are the inputs to the yield model. Zero values fall back to
// dataset-typical defaults.
type Factors struct {
	Rainfall    float64 `json:"rainfall"`    // mm/season
	Temperature float64 `json:"temperature"` // celsius
	SoilHealth  float64 `json:"soil_health"` // 0-100 index
}

type Prediction struct {
	Crop           string  `json:"crop"`
	PredictedYield float64 `json:"predicted_yield"` // tonnes/hectare
	Confidence     int     `json:"confidence"`      // percent
	Factors        Factors `json:"factors_used"`
	ModelInfo      string  `json:"model_info"`
}

type YieldNotFoundError struct {
	Crop      string
	Available []string
}

func (e *YieldNotFoundError) Error() string {
	return fmt.Sprintf("crop %q not found", e.Crop)
}

func (r *PredictRequest) Normalize() {
	r.Crop = strings.ToLower(strings.TrimSpace(r.Crop))
	if r.Crop == "" {
		r.Crop = "rice"
	}
	if r.Factors.Rainfall == 0 {
		r.Factors.Rainfall = 800
	}
	if r.Factors.Temperature == 0 {
		r.Factors.Temperature = 25
	}
	if r.Factors.SoilHealth == 0 {
		r.Factors.SoilHealth = 75
	}
}

func (r *PredictRequest) Validate() error {
	if r.Factors.Rainfall < 0 || r.Factors.Temperature < -20 || r.Factors.Temperature > 60 {
		return fmt.Errorf("factors out of range")
	}
	if r.Factors.SoilHealth < 0 || r.Factors.SoilHealth > 100 {
		return fmt.Errorf("soil_health must be between 0 and 100")
	}
	return nil
}
