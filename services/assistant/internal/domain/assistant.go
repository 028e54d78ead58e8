package domain

import (
	"fmt"
	"strings"
	"time"
)

type ChatRequest struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	CropType string `json:"crop_type,omitempty"`
	Image    string `json:"image,omitempty"` // base64-encoded leaf photo
}

type ChatResponse struct {
	Answer       string           `json:"answer"`
	Weather      *WeatherReport   `json:"weather,omitempty"`
	CropAnalysis []string         `json:"crop_analysis,omitempty"`
	Diagnosis    *DiagnosisReport `json:"diagnosis,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// DiagnosisReport is the assistant's view of an image analysis run by
// the diagnosis service.
type DiagnosisReport struct {
	CropType        string   `json:"crop_type"`
	DiseaseDetected string   `json:"disease_detected"`
	Confidence      float64  `json:"confidence"`
	IsHealthy       bool     `json:"is_healthy"`
	Severity        string   `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// WeatherReport is the assistant's view of current conditions at a
// location, already flattened from the upstream provider's shape.
type WeatherReport struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"` // celsius
	Humidity    int     `json:"humidity"`    // percent
	Conditions  string  `json:"conditions"`  // e.g. "Rain"
	Description string  `json:"description"` // e.g. "light rain"
}

// HistoryEntry is one stored exchange in a user's conversation.
type HistoryEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// cropConditions captures the growing envelope per crop.
type cropConditions struct {
	tempMin, tempMax   float64
	humidMin, humidMax int
	rainfallNeeded     bool
}

var cropTable = map[string]cropConditions{
	"rice":   {20, 35, 60, 80, true},
	"wheat":  {15, 30, 50, 70, false},
	"cotton": {25, 35, 40, 60, true},
	"maize":  {20, 32, 50, 75, true},
}

// KnownCrop reports whether condition analysis is available for the crop.
func KnownCrop(cropType string) bool {
	_, ok := cropTable[strings.ToLower(cropType)]
	return ok
}

// AnalyzeForCrop compares current weather against the crop's optimal
// envelope and returns one finding per dimension.
func AnalyzeForCrop(w *WeatherReport, cropType string) []string {
	info, ok := cropTable[strings.ToLower(cropType)]
	if w == nil || !ok {
		return []string{"Unable to analyze weather conditions for this crop."}
	}

	var analysis []string

	if w.Temperature >= info.tempMin && w.Temperature <= info.tempMax {
		analysis = append(analysis, fmt.Sprintf("Temperature (%.1f°C) is optimal", w.Temperature))
	} else {
		analysis = append(analysis, fmt.Sprintf("Temperature (%.1f°C) is outside the optimal range (%.0f-%.0f°C)",
			w.Temperature, info.tempMin, info.tempMax))
	}

	if w.Humidity >= info.humidMin && w.Humidity <= info.humidMax {
		analysis = append(analysis, fmt.Sprintf("Humidity (%d%%) is optimal", w.Humidity))
	} else {
		analysis = append(analysis, fmt.Sprintf("Humidity (%d%%) is outside the optimal range (%d-%d%%)",
			w.Humidity, info.humidMin, info.humidMax))
	}

	raining := strings.Contains(strings.ToLower(w.Conditions), "rain")
	switch {
	case info.rainfallNeeded && raining:
		analysis = append(analysis, "Current rainfall is beneficial for this crop")
	case info.rainfallNeeded && !raining:
		analysis = append(analysis, "This crop needs rainfall; consider irrigation")
	case !info.rainfallNeeded && raining:
		analysis = append(analysis, "Rainfall is not required; watch for waterlogging")
	}

	return analysis
}
