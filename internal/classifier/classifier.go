// Package classifier maps hand landmark feature vectors to sign labels.
package classifier

import (
	"errors"
	"fmt"
)

// FeatureLength is the size of a single-hand feature vector:
// 21 landmarks with an x and y offset each.
const FeatureLength = 42

var (
	// ErrFeatureLength is returned when a vector is not FeatureLength long.
	ErrFeatureLength = errors.New("feature vector has wrong length")
	// ErrUnknownClass is returned when a class index has no label.
	ErrUnknownClass = errors.New("unknown class index")
)

// Classifier predicts a class index for a feature vector.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(features []float64) (int, error)
	Close() error
}

// Labels maps class indices to sign labels.
type Labels []string

// Alphabet returns the A-Z mapping: 0 is "A", 25 is "Z".
func Alphabet() Labels {
	labels := make(Labels, 26)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	return labels
}

// Lookup returns the label for class.
func (l Labels) Lookup(class int) (string, error) {
	if class < 0 || class >= len(l) {
		return "", fmt.Errorf("%w: %d", ErrUnknownClass, class)
	}
	return l[class], nil
}

func checkLength(features []float64) error {
	if len(features) != FeatureLength {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureLength, len(features), FeatureLength)
	}
	return nil
}
