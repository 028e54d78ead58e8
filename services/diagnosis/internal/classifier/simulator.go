package classifier

import (
	"context"
	"math/rand"
	"strings"
)

// Simulator stands in when no model server is configured or reachable.
// Its answers are random but shaped like real predictions, which keeps
// the rest of the pipeline exercisable.
type Simulator struct{}

var simulatedClasses = []string{
	"Tomato_healthy",
	"Tomato_Bacterial_spot",
	"Tomato_Early_blight",
	"Tomato_Late_blight",
	"Tomato_Leaf_Mold",
	"Pepper__bell___healthy",
	"Pepper__bell___Bacterial_spot",
	"Potato___healthy",
	"Potato___Early_blight",
	"Potato___Late_blight",
	"Corn_healthy",
	"Corn_rust",
	"Wheat_healthy",
	"Wheat_rust",
}

func (Simulator) Classify(_ context.Context, _ []byte, _ string) (*Prediction, error) {
	return &Prediction{
		ClassName:  simulatedClasses[rand.Intn(len(simulatedClasses))],
		Confidence: 0.7 + rand.Float64()*0.25,
	}, nil
}

// ClassifyCrop narrows the simulation to classes of one crop when the
// caller already knows what they photographed.
func (s Simulator) ClassifyCrop(ctx context.Context, cropType string) (*Prediction, error) {
	if cropType == "" || cropType == "auto" {
		return s.Classify(ctx, nil, "")
	}
	var matching []string
	for _, c := range simulatedClasses {
		if strings.Contains(strings.ToLower(c), strings.ToLower(cropType)) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return s.Classify(ctx, nil, "")
	}
	return &Prediction{
		ClassName:  matching[rand.Intn(len(matching))],
		Confidence: 0.7 + rand.Float64()*0.25,
	}, nil
}
