package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed crop_data.json
var cropData []byte

type Info struct {
	Name          string `json:"name"`
	Source        string `json:"source"`
	TotalRecords  int    `json:"total_records"`
	YearsCovered  string `json:"years_covered"`
	StatesCovered int    `json:"states_covered"`
}

type CropStats struct {
	AverageYield float64            `json:"average_yield"`
	MinYield     float64            `json:"min_yield"`
	MaxYield     float64            `json:"max_yield"`
	Unit         string             `json:"unit"`
	YearlyYields map[string]float64 `json:"yearly_yields"`
}

type SampleRecord struct {
	State            string  `json:"state"`
	District         string  `json:"district"`
	Crop             string  `json:"crop"`
	Year             int     `json:"year"`
	Season           string  `json:"season"`
	AreaHectares     float64 `json:"area_hectares"`
	ProductionTonnes float64 `json:"production_tonnes"`
	Yield            float64 `json:"yield"`
}

type Dataset struct {
	Info    Info                 `json:"dataset_info"`
	Crops   map[string]CropStats `json:"crop_statistics"`
	Samples []SampleRecord       `json:"sample_records"`
}

// Load parses the embedded dataset. Failing here is a build problem,
// not a runtime condition, so the caller treats an error as fatal.
func Load() (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(cropData, &d); err != nil {
		return nil, fmt.Errorf("failed to parse embedded crop data: %w", err)
	}
	return &d, nil
}

// Find matches a crop name case-insensitively, accepting partial
// matches in either direction ("rice" finds "Rice", "Basmati Rice"
// would find "rice").
func (d *Dataset) Find(crop string) (string, *CropStats, bool) {
	needle := strings.ToLower(strings.TrimSpace(crop))
	if needle == "" {
		return "", nil, false
	}
	for name, stats := range d.Crops {
		lower := strings.ToLower(name)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			s := stats
			return name, &s, true
		}
	}
	return "", nil, false
}

// Sample returns at most n raw records from the dataset.
func (d *Dataset) Sample(n int) []SampleRecord {
	if n < 0 {
		n = 0
	}
	if n > len(d.Samples) {
		n = len(d.Samples)
	}
	out := make([]SampleRecord, n)
	copy(out, d.Samples)
	return out
}

// CropNames lists the dataset's crops in stable order.
func (d *Dataset) CropNames() []string {
	names := make([]string, 0, len(d.Crops))
	for name := range d.Crops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
