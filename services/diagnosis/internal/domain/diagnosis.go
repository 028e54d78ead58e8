package domain

import (
	"strings"
	"time"
)

// Result is a completed crop image analysis.
type Result struct {
	AnalysisType    string    `json:"analysis_type"` // "model" or "simulation"
	CropType        string    `json:"crop_type"`
	DiseaseDetected string    `json:"disease_detected"`
	Confidence      float64   `json:"confidence"`
	IsHealthy       bool      `json:"is_healthy"`
	Severity        string    `json:"severity"`
	Recommendations []string  `json:"recommendations"`
	Timestamp       time.Time `json:"timestamp"`
	ModelInfo       ModelInfo `json:"model_info"`
}

type ModelInfo struct {
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

const (
	SeverityNone      = "None"
	SeverityLow       = "Low"
	SeverityMedium    = "Medium"
	SeverityHigh      = "High"
	SeverityUncertain = "Uncertain"
)

// ConfidenceThreshold marks the point below which a prediction is
// reported but flagged as uncertain.
const ConfidenceThreshold = 0.6

type diseaseEntry struct {
	name     string
	severity string
}

// Keyed on fragments of the classifier's class labels.
var diseaseTable = []struct {
	fragment string
	entry    diseaseEntry
}{
	{"bacterial_spot", diseaseEntry{"Bacterial Spot", SeverityHigh}},
	{"early_blight", diseaseEntry{"Early Blight", SeverityHigh}},
	{"late_blight", diseaseEntry{"Late Blight", SeverityHigh}},
	{"leaf_mold", diseaseEntry{"Leaf Mold", SeverityMedium}},
	{"leaf_mould", diseaseEntry{"Leaf Mold", SeverityMedium}},
	{"septoria", diseaseEntry{"Septoria Leaf Spot", SeverityMedium}},
	{"spider_mites", diseaseEntry{"Spider Mites (Two-spotted)", SeverityMedium}},
	{"target_spot", diseaseEntry{"Target Spot", SeverityMedium}},
	{"mosaic_virus", diseaseEntry{"Tomato Mosaic Virus", SeverityHigh}},
	{"yellowleaf", diseaseEntry{"Yellow Leaf Curl Virus", SeverityHigh}},
	{"curl_virus", diseaseEntry{"Yellow Leaf Curl Virus", SeverityHigh}},
	{"northern_leaf_blight", diseaseEntry{"Northern Leaf Blight", SeverityHigh}},
	{"rust", diseaseEntry{"Rust", SeverityMedium}},
	{"powdery_mildew", diseaseEntry{"Powdery Mildew", SeverityMedium}},
}

// ParsePrediction turns a raw classifier label and confidence into a
// structured result, minus the recommendation list.
func ParsePrediction(className string, confidence float64) (crop, disease, severity string, healthy bool) {
	lower := strings.ToLower(className)

	switch {
	case strings.Contains(lower, "tomato"):
		crop = "Tomato"
	case strings.Contains(lower, "pepper"), strings.Contains(lower, "bell"):
		crop = "Pepper (Bell)"
	case strings.Contains(lower, "potato"):
		crop = "Potato"
	case strings.Contains(lower, "corn"), strings.Contains(lower, "maize"):
		crop = "Corn"
	case strings.Contains(lower, "wheat"):
		crop = "Wheat"
	default:
		crop = "Unknown"
	}

	if strings.Contains(lower, "healthy") {
		return crop, "Healthy", SeverityNone, true
	}

	disease = "Unknown Disease"
	severity = SeverityMedium
	for _, d := range diseaseTable {
		if strings.Contains(lower, d.fragment) {
			disease = d.entry.name
			severity = d.entry.severity
			break
		}
	}

	if confidence < ConfidenceThreshold {
		severity = SeverityUncertain
	}
	return crop, disease, severity, false
}

// Recommendations returns treatment guidance for a parsed diagnosis.
func Recommendations(crop, disease, severity string, healthy bool) []string {
	if healthy {
		return []string{
			"Your " + strings.ToLower(crop) + " plant appears healthy",
			"Continue current care routine",
			"Maintain proper watering schedule",
			"Monitor regularly for any changes",
		}
	}

	recs := []string{disease + " detected in " + strings.ToLower(crop)}
	switch disease {
	case "Bacterial Spot":
		recs = append(recs,
			"Apply copper-based bactericide",
			"Avoid overhead watering; water at soil level",
			"Remove affected leaves and dispose safely",
			"Improve air circulation between plants",
		)
	case "Early Blight":
		recs = append(recs,
			"Apply fungicide (chlorothalonil, mancozeb, or boscalid)",
			"Remove infected plant debris immediately",
			"Practice crop rotation",
			"Apply mulch to prevent soil splash",
		)
	case "Late Blight":
		recs = append(recs,
			"Urgent: apply copper or mancozeb fungicide immediately",
			"Remove and destroy infected plants completely",
			"Reduce humidity and improve ventilation",
			"Do not compost infected material",
		)
	case "Leaf Mold":
		recs = append(recs,
			"Increase air circulation and reduce humidity",
			"Remove affected leaves from the bottom up",
			"Water at soil level only",
		)
	case "Septoria Leaf Spot":
		recs = append(recs,
			"Apply copper-based fungicide or chlorothalonil",
			"Remove infected leaves from the bottom of the plant",
			"Avoid overhead watering",
			"Practice crop rotation",
		)
	case "Spider Mites (Two-spotted)":
		recs = append(recs,
			"Apply miticide or insecticidal soap",
			"Remove heavily infested leaves",
			"Check undersides of leaves regularly",
		)
	case "Target Spot":
		recs = append(recs,
			"Apply fungicide (azoxystrobin or chlorothalonil)",
			"Remove infected plant debris",
			"Water at soil level to keep foliage dry",
		)
	case "Tomato Mosaic Virus":
		recs = append(recs,
			"No cure available; focus on prevention",
			"Remove and destroy infected plants",
			"Control aphids and other vectors",
			"Sanitize tools between plants",
		)
	case "Yellow Leaf Curl Virus":
		recs = append(recs,
			"Viral disease with no cure available",
			"Remove infected plants to prevent spread",
			"Control whiteflies, the primary vector",
			"Plant resistant varieties if available",
		)
	default:
		recs = append(recs,
			"Consult an agricultural expert for treatment",
			"Remove affected plant parts immediately",
			"Monitor the plant closely for progression",
		)
	}

	recs = append(recs,
		"Severity level: "+severity,
		"Contact your local agricultural extension for specific advice",
	)
	return recs
}
