package sign

import (
	"math"

	"github.com/ayusman/handsign/internal/detector"
)

// Features flattens detected hands into a feature vector of
// (x - minX, y - minY) pairs in landmark order.
//
// The x/y pools used for the minimum are shared across hands and grow as
// each hand is visited, so hand i is offset by the minimum over hands 0..i.
// Every hand appends 42 values; more than one hand therefore never yields a
// classifiable vector. This matches the behavior the deployed model was
// served with and is kept until per-hand normalization is agreed on.
func Features(hands []detector.HandLandmarks) []float64 {
	if len(hands) == 0 {
		return nil
	}

	features := make([]float64, 0, len(hands)*detector.NumLandmarks*2)
	minX, minY := math.Inf(1), math.Inf(1)

	for i := range hands {
		for _, p := range hands[i].Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
		}

		for _, p := range hands[i].Points {
			features = append(features, p.X-minX, p.Y-minY)
		}
	}

	return features
}
