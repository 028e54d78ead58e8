package service_test

import (
	"errors"
	"testing"

	"github.com/agriguru/agriguru-backend/services/market/internal/dataset"
	"github.com/agriguru/agriguru-backend/services/market/internal/domain"
	"github.com/agriguru/agriguru-backend/services/market/internal/service"
)

func newService(t *testing.T) service.MarketService {
	t.Helper()
	data, err := dataset.Load()
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	return service.NewMarketService(data)
}

func TestDatasetLoads(t *testing.T) {
	data, err := dataset.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(data.Crops) == 0 {
		t.Fatal("dataset should carry crop statistics")
	}
	if data.Info.TotalRecords == 0 {
		t.Fatal("dataset info should be populated")
	}
}

func TestCropYieldsCaseInsensitive(t *testing.T) {
	svc := newService(t)

	name, stats, err := svc.CropYields("rice")
	if err != nil {
		t.Fatalf("yields: %v", err)
	}
	if name != "Rice" {
		t.Errorf("expected canonical name Rice, got %q", name)
	}
	if stats.AverageYield != 2.8 {
		t.Errorf("unexpected average yield: %v", stats.AverageYield)
	}
	if len(stats.YearlyYields) == 0 {
		t.Error("yearly series should be present")
	}
}

func TestCropYieldsUnknownListsAvailable(t *testing.T) {
	svc := newService(t)

	_, _, err := svc.CropYields("dragonfruit")
	var notFound *domain.YieldNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected YieldNotFoundError, got %v", err)
	}
	if len(notFound.Available) == 0 {
		t.Error("error should list available crops")
	}
}

func TestPredictYieldTypicalConditions(t *testing.T) {
	svc := newService(t)

	pred, err := svc.PredictYield(&domain.PredictRequest{
		Crop: "wheat",
		Factors: domain.Factors{
			Rainfall:    800,
			Temperature: 25,
			SoilHealth:  100,
		},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	// base 3.2 * 1.0 * 1.0 * 1.0
	if pred.PredictedYield != 3.2 {
		t.Errorf("expected 3.2 at typical conditions with perfect soil, got %v", pred.PredictedYield)
	}
	if pred.Confidence != 85 {
		t.Errorf("typical rainfall should give 85%% confidence, got %d", pred.Confidence)
	}
	if pred.Crop != "Wheat" {
		t.Errorf("expected canonical crop name, got %q", pred.Crop)
	}
}

func TestPredictYieldScalesWithFactors(t *testing.T) {
	svc := newService(t)

	dry, err := svc.PredictYield(&domain.PredictRequest{
		Crop:    "rice",
		Factors: domain.Factors{Rainfall: 400, Temperature: 25, SoilHealth: 75},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	wet, err := svc.PredictYield(&domain.PredictRequest{
		Crop:    "rice",
		Factors: domain.Factors{Rainfall: 800, Temperature: 25, SoilHealth: 75},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if dry.PredictedYield >= wet.PredictedYield {
		t.Errorf("half rainfall should predict lower yield: dry=%v wet=%v", dry.PredictedYield, wet.PredictedYield)
	}
	if dry.Confidence >= wet.Confidence {
		t.Errorf("atypical rainfall should lower confidence: dry=%d wet=%d", dry.Confidence, wet.Confidence)
	}
}

func TestPredictYieldTemperatureCapped(t *testing.T) {
	svc := newService(t)

	hot, err := svc.PredictYield(&domain.PredictRequest{
		Crop:    "maize",
		Factors: domain.Factors{Rainfall: 800, Temperature: 50, SoilHealth: 75},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	warm, err := svc.PredictYield(&domain.PredictRequest{
		Crop:    "maize",
		Factors: domain.Factors{Rainfall: 800, Temperature: 30, SoilHealth: 75},
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if hot.PredictedYield != warm.PredictedYield {
		t.Errorf("temperature factor should cap at 1.2: hot=%v warm=%v", hot.PredictedYield, warm.PredictedYield)
	}
}

func TestPredictYieldDefaults(t *testing.T) {
	svc := newService(t)

	pred, err := svc.PredictYield(&domain.PredictRequest{})
	if err != nil {
		t.Fatalf("predict with defaults: %v", err)
	}
	if pred.Crop != "Rice" {
		t.Errorf("crop should default to rice, got %q", pred.Crop)
	}
	if pred.PredictedYield <= 0 {
		t.Errorf("defaults should produce a positive yield, got %v", pred.PredictedYield)
	}
}

func TestPredictYieldRejectsBadFactors(t *testing.T) {
	svc := newService(t)

	if _, err := svc.PredictYield(&domain.PredictRequest{
		Crop:    "rice",
		Factors: domain.Factors{Rainfall: 800, Temperature: 25, SoilHealth: 140},
	}); err == nil {
		t.Fatal("soil_health above 100 should be rejected")
	}
}

func TestSampleDataBounded(t *testing.T) {
	svc := newService(t)

	all := svc.SampleData(20)
	if len(all) == 0 {
		t.Fatal("dataset should carry sample records")
	}
	if got := svc.SampleData(3); len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got := svc.SampleData(0); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}

	for _, rec := range all {
		if rec.State == "" || rec.Crop == "" || rec.Yield <= 0 {
			t.Errorf("incomplete sample record: %+v", rec)
		}
	}
}
