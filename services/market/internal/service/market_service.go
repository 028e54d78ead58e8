package service

import (
	"fmt"
	"math"

	"github.com/agriguru/agriguru-backend/services/market/internal/dataset"
	"github.com/agriguru/agriguru-backend/services/market/internal/domain"
)

type MarketService interface {
	DatasetInfo() dataset.Info
	CropYields(crop string) (string, *dataset.CropStats, error)
	PredictYield(req *domain.PredictRequest) (*domain.Prediction, error)
	SampleData(limit int) []dataset.SampleRecord
}

type marketService struct {
	data *dataset.Dataset
}

func NewMarketService(data *dataset.Dataset) MarketService {
	return &marketService{data: data}
}

func (s *marketService) DatasetInfo() dataset.Info {
	return s.data.Info
}

func (s *marketService) CropYields(crop string) (string, *dataset.CropStats, error) {
	name, stats, ok := s.data.Find(crop)
	if !ok {
		return "", nil, &domain.YieldNotFoundError{Crop: crop, Available: s.data.CropNames()}
	}
	return name, stats, nil
}

func (s *marketService) SampleData(limit int) []dataset.SampleRecord {
	return s.data.Sample(limit)
}

// Typical per-crop yields when the dataset has no entry for the crop.
const fallbackBaseYield = 2.5

// PredictYield scales the crop's historical base yield by deviation of
// the supplied factors from dataset-typical conditions (800mm rainfall,
// 25°C, soil index 75).
func (s *marketService) PredictYield(req *domain.PredictRequest) (*domain.Prediction, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	baseYield := fallbackBaseYield
	crop := req.Crop
	if name, stats, ok := s.data.Find(req.Crop); ok {
		baseYield = stats.AverageYield
		crop = name
	}

	rainfallFactor := req.Factors.Rainfall / 800.0
	tempFactor := math.Min(req.Factors.Temperature/25.0, 1.2)
	soilFactor := req.Factors.SoilHealth / 100.0

	predicted := baseYield * rainfallFactor * tempFactor * soilFactor

	// Confidence degrades the further rainfall strays from typical,
	// clamped to [60, 95].
	confidence := 85 - math.Abs(rainfallFactor-1)*20
	confidence = math.Min(95, math.Max(60, confidence))

	return &domain.Prediction{
		Crop:           crop,
		PredictedYield: math.Round(predicted*100) / 100,
		Confidence:     int(math.Round(confidence)),
		Factors:        req.Factors,
		ModelInfo:      "Linear model over historical crop production data",
	}, nil
}
