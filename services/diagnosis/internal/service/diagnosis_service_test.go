package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/classifier"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/domain"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/service"
)

// ---------- Mocks ----------

type mockClassifier struct {
	pred *classifier.Prediction
	err  error
}

func (m *mockClassifier) Classify(context.Context, []byte, string) (*classifier.Prediction, error) {
	return m.pred, m.err
}

type mockPublisher struct {
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ---------- Prediction parsing ----------

func TestParsePrediction(t *testing.T) {
	cases := []struct {
		className string
		conf      float64
		crop      string
		disease   string
		severity  string
		healthy   bool
	}{
		{"Tomato_healthy", 0.95, "Tomato", "Healthy", domain.SeverityNone, true},
		{"Tomato_Late_blight", 0.9, "Tomato", "Late Blight", domain.SeverityHigh, false},
		{"Tomato_Leaf_Mold", 0.8, "Tomato", "Leaf Mold", domain.SeverityMedium, false},
		{"Pepper__bell___Bacterial_spot", 0.85, "Pepper (Bell)", "Bacterial Spot", domain.SeverityHigh, false},
		{"Potato___Early_blight", 0.75, "Potato", "Early Blight", domain.SeverityHigh, false},
		{"Tomato_YellowLeaf__Curl_Virus", 0.9, "Tomato", "Yellow Leaf Curl Virus", domain.SeverityHigh, false},
		{"mystery_label", 0.8, "Unknown", "Unknown Disease", domain.SeverityMedium, false},
		// Low confidence downgrades severity to uncertain.
		{"Tomato_Late_blight", 0.4, "Tomato", "Late Blight", domain.SeverityUncertain, false},
	}

	for _, tc := range cases {
		crop, disease, severity, healthy := domain.ParsePrediction(tc.className, tc.conf)
		if crop != tc.crop || disease != tc.disease || severity != tc.severity || healthy != tc.healthy {
			t.Errorf("%s: got (%s, %s, %s, %v), want (%s, %s, %s, %v)",
				tc.className, crop, disease, severity, healthy, tc.crop, tc.disease, tc.severity, tc.healthy)
		}
	}
}

func TestRecommendationsForHealthyPlant(t *testing.T) {
	recs := domain.Recommendations("Tomato", "Healthy", domain.SeverityNone, true)
	if len(recs) == 0 {
		t.Fatal("healthy plants still get care guidance")
	}
}

func TestRecommendationsNameTheDisease(t *testing.T) {
	recs := domain.Recommendations("Tomato", "Late Blight", domain.SeverityHigh, false)
	if len(recs) < 3 {
		t.Fatalf("expected substantive guidance, got %v", recs)
	}
	if recs[0] != "Late Blight detected in tomato" {
		t.Errorf("unexpected lead recommendation: %q", recs[0])
	}
}

// ---------- Analysis pipeline ----------

func TestAnalyzeWithModel(t *testing.T) {
	model := &mockClassifier{pred: &classifier.Prediction{ClassName: "Tomato_Late_blight", Confidence: 0.92}}
	bus := &mockPublisher{}
	svc := service.NewDiagnosisService(model, bus)

	result, err := svc.Analyze(context.Background(), []byte("fake-image"), "leaf.jpg", "auto")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.AnalysisType != "model" {
		t.Errorf("expected model analysis, got %s", result.AnalysisType)
	}
	if result.CropType != "Tomato" || result.DiseaseDetected != "Late Blight" {
		t.Errorf("unexpected parse: %+v", result)
	}
	if result.IsHealthy {
		t.Error("late blight is not healthy")
	}
	if len(bus.subjects) != 1 || bus.subjects[0] != "diagnosis.completed" {
		t.Errorf("expected diagnosis.completed event, got %v", bus.subjects)
	}
}

func TestAnalyzeFallsBackToSimulation(t *testing.T) {
	model := &mockClassifier{err: fmt.Errorf("model server unreachable")}
	svc := service.NewDiagnosisService(model, &mockPublisher{})

	result, err := svc.Analyze(context.Background(), []byte("fake-image"), "leaf.jpg", "tomato")
	if err != nil {
		t.Fatalf("analyze should not fail when the model is down: %v", err)
	}
	if result.AnalysisType != "simulation" {
		t.Errorf("expected simulation fallback, got %s", result.AnalysisType)
	}
	if result.CropType != "Tomato" {
		t.Errorf("crop hint should constrain the simulation, got %s", result.CropType)
	}
	if result.Confidence < 0.7 || result.Confidence > 0.95 {
		t.Errorf("simulated confidence out of range: %v", result.Confidence)
	}
}

func TestAnalyzeWithoutModel(t *testing.T) {
	svc := service.NewDiagnosisService(nil, &mockPublisher{})

	result, err := svc.Analyze(context.Background(), []byte("fake-image"), "leaf.jpg", "auto")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.AnalysisType != "simulation" {
		t.Errorf("expected simulation mode, got %s", result.AnalysisType)
	}
	if len(result.Recommendations) == 0 {
		t.Error("every result carries recommendations")
	}
}
