// Package sign turns a single camera frame into a fingerspelled letter.
package sign

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/classifier"
	"github.com/ayusman/handsign/internal/detector"
)

// ErrCaptureFailed is returned when no frame could be read from the camera.
var ErrCaptureFailed = errors.New("failed to capture frame")

// Result is the outcome of one recognition cycle.
// An empty Alphabet means no sign was recognized; it is not an error.
type Result struct {
	Alphabet string
	Hands    int
	Features int
}

// Recognizer runs capture, landmark detection and classification for one frame.
type Recognizer struct {
	source     capture.FrameSource
	detector   detector.Detector
	classifier classifier.Classifier
	labels     classifier.Labels
}

// New creates a Recognizer over the given collaborators.
func New(source capture.FrameSource, d detector.Detector, c classifier.Classifier, labels classifier.Labels) *Recognizer {
	return &Recognizer{
		source:     source,
		detector:   d,
		classifier: c,
		labels:     labels,
	}
}

// Recognize reads the next frame and classifies the hand sign in it.
func (r *Recognizer) Recognize(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	frame, err := r.source.ReadFrame()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	defer frame.Close()

	// MediaPipe expects RGB; OpenCV captures BGR.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(*frame, &rgb, gocv.ColorBGRToRGB)

	hands, err := r.detector.Detect(&rgb)
	if err != nil {
		return Result{}, fmt.Errorf("detect hands: %w", err)
	}
	if len(hands) == 0 {
		return Result{}, nil
	}

	features := Features(hands)
	result := Result{Hands: len(hands), Features: len(features)}

	result.Alphabet, err = r.Classify(features)
	if err != nil {
		return result, err
	}

	log.Debug().
		Int("hands", result.Hands).
		Int("features", result.Features).
		Str("alphabet", result.Alphabet).
		Msg("sign recognized")

	return result, nil
}

// Classify returns the label for features, or "" when the vector is not
// exactly one hand long. The classifier is called only for 42-element vectors.
func (r *Recognizer) Classify(features []float64) (string, error) {
	if len(features) != classifier.FeatureLength {
		return "", nil
	}

	class, err := r.classifier.Predict(features)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	return r.labels.Lookup(class)
}
