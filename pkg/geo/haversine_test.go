package geo

import (
	"math"
	"testing"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"same point", 28.6139, 77.2090, 28.6139, 77.2090, 0, 0.001},
		{"delhi to mumbai", 28.6139, 77.2090, 19.0760, 72.8777, 1150, 20},
		{"one degree latitude", 0, 0, 1, 0, 111.19, 0.5},
		{"antipodal-ish", 0, 0, 0, 180, 20015, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Fatalf("Distance() = %.2f km, want %.2f ± %.2f", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(12.97, 77.59, 13.08, 80.27)
	b := Distance(13.08, 80.27, 12.97, 77.59)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestValidCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {28.6, 77.2}}
	for _, c := range valid {
		if !ValidCoordinates(c[0], c[1]) {
			t.Errorf("expected (%f, %f) to be valid", c[0], c[1])
		}
	}

	invalid := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}}
	for _, c := range invalid {
		if ValidCoordinates(c[0], c[1]) {
			t.Errorf("expected (%f, %f) to be invalid", c[0], c[1])
		}
	}
}
