package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ort "github.com/yalue/onnxruntime_go"
)

func TestAlphabet(t *testing.T) {
	labels := Alphabet()

	if len(labels) != 26 {
		t.Fatalf("len(Alphabet()) = %d, want 26", len(labels))
	}

	for i := 0; i < 26; i++ {
		got, err := labels.Lookup(i)
		if err != nil {
			t.Fatalf("Lookup(%d) error = %v", i, err)
		}
		if want := string(rune('A' + i)); got != want {
			t.Errorf("Lookup(%d) = %q, want %q", i, got, want)
		}
	}

	if labels[0] != "A" || labels[25] != "Z" {
		t.Errorf("endpoints = %q..%q, want A..Z", labels[0], labels[25])
	}
}

func TestLabels_LookupOutOfRange(t *testing.T) {
	labels := Alphabet()

	for _, class := range []int{-1, 26, 1000} {
		if _, err := labels.Lookup(class); !errors.Is(err, ErrUnknownClass) {
			t.Errorf("Lookup(%d) error = %v, want ErrUnknownClass", class, err)
		}
	}
}

func TestMockClassifier(t *testing.T) {
	m := NewMockClassifier(7)
	features := make([]float64, FeatureLength)
	features[3] = 0.25

	class, err := m.Predict(features)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if class != 7 {
		t.Errorf("Predict() = %d, want 7", class)
	}

	// Mutating the caller's slice must not change the recorded call.
	features[3] = 99

	calls := m.Calls()
	if len(calls) != 1 {
		t.Fatalf("len(Calls()) = %d, want 1", len(calls))
	}
	if calls[0][3] != 0.25 {
		t.Errorf("recorded feature = %f, want 0.25", calls[0][3])
	}

	boom := errors.New("boom")
	m.SetError(boom)
	if _, err := m.Predict(features); !errors.Is(err, boom) {
		t.Errorf("Predict() error = %v, want %v", err, boom)
	}
}

func TestCheckLength(t *testing.T) {
	for _, n := range []int{0, 21, 41, 43, 84} {
		if err := checkLength(make([]float64, n)); !errors.Is(err, ErrFeatureLength) {
			t.Errorf("checkLength(%d) error = %v, want ErrFeatureLength", n, err)
		}
	}
	if err := checkLength(make([]float64, FeatureLength)); err != nil {
		t.Errorf("checkLength(%d) error = %v", FeatureLength, err)
	}
}

func TestNewONNXClassifier_MissingModel(t *testing.T) {
	_, err := NewONNXClassifier(ONNXConfig{
		ModelPath:  filepath.Join(t.TempDir(), "model.onnx"),
		InputName:  "float_input",
		OutputName: "output_label",
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("NewONNXClassifier() error = %v, want not-exist", err)
	}
}

func TestCheckModelInfo(t *testing.T) {
	cfg := ONNXConfig{InputName: "float_input", OutputName: "output_label"}

	input := func(dims []int64, dt ort.TensorElementDataType) []ort.InputOutputInfo {
		return []ort.InputOutputInfo{{Name: "float_input", Dimensions: ort.NewShape(dims...), DataType: dt}}
	}
	labels := func(dt ort.TensorElementDataType) []ort.InputOutputInfo {
		return []ort.InputOutputInfo{
			{Name: "output_label", Dimensions: ort.NewShape(-1), DataType: dt},
			{Name: "output_probability", DataType: ort.TensorElementDataTypeFloat},
		}
	}

	tests := []struct {
		name    string
		inputs  []ort.InputOutputInfo
		outputs []ort.InputOutputInfo
		wantErr string
	}{
		{
			name:    "int64 labels over a dynamic batch",
			inputs:  input([]int64{-1, 42}, ort.TensorElementDataTypeFloat),
			outputs: labels(ort.TensorElementDataTypeInt64),
		},
		{
			name:    "fixed batch of one",
			inputs:  input([]int64{1, 42}, ort.TensorElementDataTypeFloat),
			outputs: labels(ort.TensorElementDataTypeInt64),
		},
		{
			name:    "string labels",
			inputs:  input([]int64{-1, 42}, ort.TensorElementDataTypeFloat),
			outputs: labels(ort.TensorElementDataTypeString),
			wantErr: "want int64",
		},
		{
			name:    "double input",
			inputs:  input([]int64{-1, 42}, ort.TensorElementDataTypeDouble),
			outputs: labels(ort.TensorElementDataTypeInt64),
			wantErr: "want float32",
		},
		{
			name:    "wrong width",
			inputs:  input([]int64{-1, 63}, ort.TensorElementDataTypeFloat),
			outputs: labels(ort.TensorElementDataTypeInt64),
			wantErr: "want [N 42]",
		},
		{
			name:    "missing input",
			outputs: labels(ort.TensorElementDataTypeInt64),
			wantErr: "no input named",
		},
		{
			name:    "missing output",
			inputs:  input([]int64{-1, 42}, ort.TensorElementDataTypeFloat),
			wantErr: "no output named",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkModelInfo(cfg, tt.inputs, tt.outputs)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("checkModelInfo() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("checkModelInfo() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

// TestONNXClassifier_Integration needs a real runtime and model:
// HANDSIGN_TEST_MODEL=/path/model.onnx [HANDSIGN_ORT_LIB=/path/libonnxruntime.so]
func TestONNXClassifier_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	modelPath := os.Getenv("HANDSIGN_TEST_MODEL")
	if modelPath == "" {
		t.Skip("HANDSIGN_TEST_MODEL not set")
	}

	if err := InitRuntime(os.Getenv("HANDSIGN_ORT_LIB")); err != nil {
		t.Skipf("onnx runtime not available: %v", err)
	}
	defer DestroyRuntime()

	c, err := NewONNXClassifier(ONNXConfig{
		ModelPath:  modelPath,
		InputName:  "float_input",
		OutputName: "output_label",
	})
	if err != nil {
		t.Fatalf("NewONNXClassifier() error = %v", err)
	}
	defer c.Close()

	class, err := c.Predict(make([]float64, FeatureLength))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if _, err := Alphabet().Lookup(class); err != nil {
		t.Errorf("predicted class %d has no label: %v", class, err)
	}

	if _, err := c.Predict(make([]float64, 10)); !errors.Is(err, ErrFeatureLength) {
		t.Errorf("Predict(short) error = %v, want ErrFeatureLength", err)
	}
}
