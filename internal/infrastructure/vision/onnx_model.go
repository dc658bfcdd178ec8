package vision

import (
	"context"
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// ONNXConfig параметры модели для onnxruntime.
type ONNXConfig struct {
	ModelPath  string
	SharedLib  string // путь к libonnxruntime, по умолчанию системный
	Classes    []string
	InputSize  int
	NumThreads int
}

// ONNXModel YOLOv8-детектор дефектов на onnxruntime.
// Вызовы Predict сериализуются: входной и выходной тензоры общие.
type ONNXModel struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputSize  int
	numAnchors int
	classes    []string
}

// NewONNXModel загружает модель. Без файла модели возвращает entity.ErrConfig.
func NewONNXModel(cfg ONNXConfig) (*ONNXModel, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(entity.ErrConfig, "model file not found at %s: %v", cfg.ModelPath, err)
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}

	if !ort.IsInitialized() {
		if cfg.SharedLib != "" {
			ort.SetSharedLibraryPath(cfg.SharedLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrapf(entity.ErrConfig, "initialize onnxruntime: %v", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, errors.Wrap(err, "read model inputs/outputs")
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New("model has no inputs or outputs")
	}

	numClasses := len(cfg.Classes)
	numAnchors := anchorsFor(cfg.InputSize)
	if dims := outputs[0].Dimensions; len(dims) == 3 && dims[2] > 0 {
		numAnchors = int(dims[2])
		if dims[1] > 4 {
			numClasses = int(dims[1]) - 4
		}
	}

	classes := append([]string(nil), cfg.Classes...)
	for len(classes) < numClasses {
		classes = append(classes, className(nil, len(classes)))
	}

	size := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(4+numClasses), int64(numAnchors)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "create session options")
	}
	defer options.Destroy()

	if cfg.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			input.Destroy()
			output.Destroy()
			return nil, errors.Wrap(err, "set intra-op threads")
		}
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "create onnxruntime session")
	}

	return &ONNXModel{
		session:    session,
		input:      input,
		output:     output,
		inputSize:  cfg.InputSize,
		numAnchors: numAnchors,
		classes:    classes[:numClasses],
	}, nil
}

// Predict запускает модель на одном снимке.
func (m *ONNXModel) Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxed, lb := letterboxImage(img, m.inputSize)

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return nil, errors.New("model is not loaded")
	}
	if err := fillCHW(m.input.GetData(), boxed, m.inputSize); err != nil {
		m.mu.Unlock()
		return nil, errors.Wrap(err, "prepare input")
	}
	if err := m.session.Run(); err != nil {
		m.mu.Unlock()
		return nil, errors.Wrap(err, "run inference")
	}
	raw := make([]float32, len(m.output.GetData()))
	copy(raw, m.output.GetData())
	m.mu.Unlock()

	cands := decodeYOLO(raw, len(m.classes), m.numAnchors, float32(th.Confidence), lb)
	return toDetections(nms(cands, float32(th.IoU)), m.classes), nil
}

// Loaded сообщает, создана ли сессия.
func (m *ONNXModel) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Classes возвращает таблицу классов модели.
func (m *ONNXModel) Classes() []string {
	return m.classes
}

// Close освобождает сессию и тензоры.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	if m.session != nil {
		firstErr = m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	return firstErr
}

// anchorsFor число якорей YOLOv8 для квадратного входа со страйдами 8, 16, 32.
func anchorsFor(size int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		side := size / stride
		n += side * side
	}
	return n
}

var _ port.Model = (*ONNXModel)(nil)
