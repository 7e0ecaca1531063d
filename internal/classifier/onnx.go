package classifier

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig locates the classifier artifact and names its tensors.
// A scikit-learn model exported with skl2onnx uses "float_input" and
// "output_label" unless told otherwise; labels must be exported as int64.
type ONNXConfig struct {
	ModelPath  string
	InputName  string
	OutputName string
}

// InitRuntime loads the ONNX Runtime shared library. An empty libPath uses
// the platform default search path. Calling it twice is a no-op.
func InitRuntime(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	return nil
}

// DestroyRuntime releases the ONNX Runtime environment.
func DestroyRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// ONNXClassifier evaluates an ONNX classifier on one feature vector at a time.
type ONNXClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[int64]
}

// NewONNXClassifier loads the model at cfg.ModelPath. InitRuntime must have
// been called. The model must take a [N, 42] (or [-1, 42]) float input.
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	if err := checkModelShape(cfg); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, FeatureLength))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().Str("model", cfg.ModelPath).Msg("classifier loaded")

	return &ONNXClassifier{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func checkModelShape(cfg ONNXConfig) error {
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", cfg.ModelPath, err)
	}
	if err := checkModelInfo(cfg, inputs, outputs); err != nil {
		return fmt.Errorf("%s: %w", cfg.ModelPath, err)
	}
	return nil
}

// checkModelInfo verifies the tensors the session binds: a float32 [N, 42]
// input and an int64 label output.
func checkModelInfo(cfg ONNXConfig, inputs, outputs []ort.InputOutputInfo) error {
	in, ok := findTensor(inputs, cfg.InputName)
	if !ok {
		return fmt.Errorf("model has no input named %q", cfg.InputName)
	}
	dims := in.Dimensions
	if len(dims) != 2 || (dims[1] != FeatureLength && dims[1] != -1) {
		return fmt.Errorf("model input %q has shape %v, want [N %d]", in.Name, dims, FeatureLength)
	}
	if in.DataType != ort.TensorElementDataTypeFloat {
		return fmt.Errorf("model input %q has element type %v, want float32", in.Name, in.DataType)
	}

	out, ok := findTensor(outputs, cfg.OutputName)
	if !ok {
		return fmt.Errorf("model has no output named %q", cfg.OutputName)
	}
	if out.DataType != ort.TensorElementDataTypeInt64 {
		return fmt.Errorf("model output %q has element type %v, want int64 class indices", out.Name, out.DataType)
	}
	return nil
}

func findTensor(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return ort.InputOutputInfo{}, false
}

// Predict runs the model on features and returns the predicted class index.
func (c *ONNXClassifier) Predict(features []float64) (int, error) {
	if err := checkLength(features); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.input.GetData()
	for i, v := range features {
		data[i] = float32(v)
	}

	if err := c.session.Run(); err != nil {
		return 0, fmt.Errorf("run classifier: %w", err)
	}

	return int(c.output.GetData()[0]), nil
}

// Close releases the session and its tensors.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	return err
}
