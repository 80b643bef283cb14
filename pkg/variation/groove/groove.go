// Package groove implements the neural variation module. It drives a
// small bundled GAN through onnxruntime and decodes its activations
// into notes on a quarter note grid.
package groove

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
	"github.com/variamidi/variamidi/pkg/variation"
)

const (
	moduleName  = "groove"
	moduleLabel = "Offline GAN Groove"
)

// DefaultModelPath is where the bundled generator model lives relative
// to the working directory.
const DefaultModelPath = "models/simple_gan.onnx"

var (
	// ErrModelUnavailable reports a missing or unloadable model file.
	ErrModelUnavailable = errors.New("groove model unavailable")
	// ErrInference reports an inference call the runtime rejected.
	ErrInference = errors.New("groove inference failed")
)

// Config controls where the module finds its model and, when needed,
// the onnxruntime shared library.
type Config struct {
	// ModelPath is the ONNX model file. Empty means DefaultModelPath.
	ModelPath string
	// RuntimeLibrary optionally points at the onnxruntime shared
	// library on platforms where it is not on the loader search path.
	RuntimeLibrary string
}

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// initRuntime brings up the process wide onnxruntime environment.
func initRuntime(library string) error {
	runtimeOnce.Do(func() {
		if library != "" {
			ort.SetSharedLibraryPath(library)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// Module generates groove patterns from the bundled GAN. The session is
// loaded lazily on first use and kept for the process lifetime.
// Inference runs are serialized because the bound tensors are shared
// buffers.
type Module struct {
	cfg Config

	mu         sync.Mutex
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	latentSize int
}

// New returns a groove module reading its model per cfg.
func New(cfg Config) *Module {
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	return &Module{cfg: cfg}
}

func (m *Module) Name() string  { return moduleName }
func (m *Module) Label() string { return moduleLabel }

// Ready reports whether the model file is present without touching the
// runtime.
func (m *Module) Ready() error {
	if _, err := os.Stat(m.cfg.ModelPath); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return nil
}

func (m *Module) Parameters() []variation.Parameter {
	return []variation.Parameter{
		{Name: "seed", Type: variation.TypeInt, Minimum: 0, Maximum: 2147483647, Default: 7},
		{Name: "length", Type: variation.TypeInt, Minimum: 8, Maximum: 128, Default: 32},
		{Name: "temperature", Type: variation.TypeFloat, Minimum: 0.1, Maximum: 2.5, Default: 1.0},
		{Name: "sensitivity", Type: variation.TypeFloat, Minimum: 0, Maximum: 0.95, Default: 0.5},
	}
}

// Generate runs one forward pass and decodes the activations. The chord
// timeline conditions the latent vector and anchors decoded pitches;
// when the caller supplies none it is detected from the source.
func (m *Module) Generate(src *midifile.Document, chords []harmony.Chord, params variation.Params) ([]midifile.Note, error) {
	if src == nil || src.NoteCount() == 0 {
		return nil, variation.ErrNoNotes
	}

	resolved := variation.Resolve(m.Parameters(), params)
	if len(chords) == 0 {
		chords = harmony.Detect(src)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(); err != nil {
		return nil, err
	}

	latent := encodeLatent(m.latentSize, resolved.Int("seed"), resolved.Float("temperature"), chords)
	copy(m.input.GetData(), latent)

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	activations := make([]float32, len(m.output.GetData()))
	copy(activations, m.output.GetData())

	return decodeNotes(activations, chords, decodeOptions{
		length:      resolved.Int("length"),
		sensitivity: resolved.Float("sensitivity"),
	}), nil
}

// load builds the session on first use. Callers hold m.mu. Failures are
// not cached, so a later call retries once the model file is in place.
func (m *Module) load() error {
	if m.session != nil {
		return nil
	}
	if _, err := os.Stat(m.cfg.ModelPath); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if err := initRuntime(m.cfg.RuntimeLibrary); err != nil {
		return fmt.Errorf("%w: initializing onnxruntime: %v", ErrModelUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(m.cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("%w: reading model signature: %v", ErrModelUnavailable, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("%w: model declares no inputs or outputs", ErrModelUnavailable)
	}

	inTensor, err := ort.NewEmptyTensor[float32](concreteShape(inputs[0].Dimensions))
	if err != nil {
		return fmt.Errorf("%w: allocating input tensor: %v", ErrModelUnavailable, err)
	}
	outTensor, err := ort.NewEmptyTensor[float32](concreteShape(outputs[0].Dimensions))
	if err != nil {
		inTensor.Destroy()
		return fmt.Errorf("%w: allocating output tensor: %v", ErrModelUnavailable, err)
	}

	session, err := ort.NewAdvancedSession(m.cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.ArbitraryTensor{inTensor}, []ort.ArbitraryTensor{outTensor}, nil)
	if err != nil {
		inTensor.Destroy()
		outTensor.Destroy()
		return fmt.Errorf("%w: creating session: %v", ErrModelUnavailable, err)
	}

	m.session = session
	m.input = inTensor
	m.output = outTensor
	m.latentSize = len(inTensor.GetData())
	return nil
}

// concreteShape pins dynamic dimensions to 1.
func concreteShape(dims ort.Shape) ort.Shape {
	out := make([]int64, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return ort.NewShape(out...)
}
