// Package inference provides ONNX Runtime integration for neural G2P model
// inference.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// ErrSessionClosed is returned by Infer after Close.
var ErrSessionClosed = errors.New("inference: session is closed")

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Logits holds the per-step output scores of the model, row-major
// [Steps][Classes].
type Logits struct {
	Steps   int
	Classes int
	Data    []float32
}

// Row returns the scores of output step t.
func (l Logits) Row(t int) []float32 {
	return l.Data[t*l.Classes : (t+1)*l.Classes]
}

// Session wraps an ONNX Runtime session for G2P inference.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath string) (*Session, error) {
	// Check file exists
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	// The exported G2P models take grapheme ids plus a mask and emit CTC
	// logits of shape [batch, steps, classes].
	inputNames := []string{"input_ids", "attention_mask"}
	outputNames := []string{"logits"}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the model on one grapheme id sequence.
func (s *Session) Infer(ctx context.Context, inputIDs []int64) (Logits, error) {
	select {
	case <-ctx.Done():
		return Logits{}, ctx.Err()
	default:
	}

	if len(inputIDs) == 0 {
		return Logits{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Logits{}, ErrSessionClosed
	}

	seqLen := int64(len(inputIDs))
	attentionMask := make([]int64, len(inputIDs))
	for i := range attentionMask {
		attentionMask[i] = 1
	}

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), inputIDs)
	if err != nil {
		return Logits{}, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer func() { _ = inputIDsTensor.Destroy() }()

	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), attentionMask)
	if err != nil {
		return Logits{}, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer func() { _ = attentionMaskTensor.Destroy() }()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor}
	outputs := []ort.Value{nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return Logits{}, fmt.Errorf("running inference: %w", err)
	}

	if outputs[0] == nil {
		return Logits{}, errors.New("no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Logits{}, errors.New("unexpected output tensor type")
	}

	shape := logitsTensor.GetShape()
	if len(shape) != 3 || shape[0] != 1 {
		return Logits{}, fmt.Errorf("unexpected output shape %v", shape)
	}
	steps, classes := int(shape[1]), int(shape[2])

	// Copy out before the tensor is destroyed.
	data := make([]float32, steps*classes)
	copy(data, logitsTensor.GetData())

	return Logits{Steps: steps, Classes: classes, Data: data}, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
