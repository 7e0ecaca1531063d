package classifier

import "sync"

// MockClassifier returns a fixed class and records every vector it is given.
type MockClassifier struct {
	mu    sync.Mutex
	class int
	err   error
	calls [][]float64
}

// NewMockClassifier creates a MockClassifier that predicts class.
func NewMockClassifier(class int) *MockClassifier {
	return &MockClassifier{class: class}
}

// SetClass changes the predicted class.
func (m *MockClassifier) SetClass(class int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.class = class
}

// SetError makes Predict fail with err.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockClassifier) Predict(features []float64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]float64(nil), features...))
	if m.err != nil {
		return 0, m.err
	}
	return m.class, nil
}

// Calls returns copies of the vectors passed to Predict, in call order.
func (m *MockClassifier) Calls() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]float64(nil), m.calls...)
}

func (m *MockClassifier) Close() error { return nil }
