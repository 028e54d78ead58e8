package service

import (
	"context"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/events"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/classifier"
	"github.com/agriguru/agriguru-backend/services/diagnosis/internal/domain"
)

type DiagnosisService interface {
	Analyze(ctx context.Context, image []byte, filename, cropType string) (*domain.Result, error)
}

type diagnosisService struct {
	model     classifier.Classifier
	simulator classifier.Simulator
	eventBus  events.Publisher
}

// NewDiagnosisService builds the analysis pipeline. model may be nil
// when no model server is configured; everything then runs through the
// simulator.
func NewDiagnosisService(model classifier.Classifier, eventBus events.Publisher) DiagnosisService {
	return &diagnosisService{model: model, eventBus: eventBus}
}

func (s *diagnosisService) Analyze(ctx context.Context, image []byte, filename, cropType string) (*domain.Result, error) {
	pred, analysisType := s.predict(ctx, image, filename, cropType)

	crop, disease, severity, healthy := domain.ParsePrediction(pred.ClassName, pred.Confidence)
	result := &domain.Result{
		AnalysisType:    analysisType,
		CropType:        crop,
		DiseaseDetected: disease,
		Confidence:      pred.Confidence,
		IsHealthy:       healthy,
		Severity:        severity,
		Recommendations: domain.Recommendations(crop, disease, severity, healthy),
		Timestamp:       time.Now(),
		ModelInfo:       modelInfo(analysisType),
	}

	if err := s.eventBus.Publish(ctx, events.DiagnosisCompleted, events.DiagnosisCompletedEvent{
		CropType:    result.CropType,
		Condition:   result.DiseaseDetected,
		Confidence:  result.Confidence,
		CompletedAt: result.Timestamp,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish diagnosis.completed", "error", err)
	}

	return result, nil
}

// predict prefers the real model and degrades to simulation rather
// than failing the request.
func (s *diagnosisService) predict(ctx context.Context, image []byte, filename, cropType string) (*classifier.Prediction, string) {
	if s.model != nil {
		pred, err := s.model.Classify(ctx, image, filename)
		if err == nil {
			return pred, "model"
		}
		logger.WarnContext(ctx, "model classify failed, falling back to simulation", "error", err)
	}

	pred, _ := s.simulator.ClassifyCrop(ctx, cropType)
	return pred, "simulation"
}

func modelInfo(analysisType string) domain.ModelInfo {
	if analysisType == "model" {
		return domain.ModelInfo{Type: "CNN classifier"}
	}
	return domain.ModelInfo{
		Type: "Simulation Mode",
		Note: "Connect a model server for accurate results",
	}
}
