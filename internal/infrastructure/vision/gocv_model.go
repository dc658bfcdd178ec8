//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// GoCVModel YOLOv8-детектор на OpenCV DNN.
type GoCVModel struct {
	mu        sync.Mutex
	net       gocv.Net
	loaded    bool
	inputSize int
	classes   []string
}

// NewGoCVModel загружает ONNX-модель через gocv.ReadNetFromONNX.
func NewGoCVModel(modelPath string, classes []string, inputSize int) (*GoCVModel, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: model file not found at %s: %v", entity.ErrConfig, modelPath, err)
	}
	if inputSize <= 0 {
		inputSize = 640
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to load network from %s", entity.ErrConfig, modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	return &GoCVModel{
		net:       net,
		loaded:    true,
		inputSize: inputSize,
		classes:   classes,
	}, nil
}

// Predict запускает сеть на одном снимке.
func (m *GoCVModel) Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxed, lb := letterboxImage(img, m.inputSize)

	mat, err := gocv.ImageToMatRGB(boxed)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer mat.Close()

	// ImageToMatRGB отдаёт BGR, swapRB возвращает порядок RGB, как при обучении.
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(m.inputSize, m.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return nil, errors.New("model is not loaded")
	}
	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	m.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	numClasses := dims[1] - 4
	classes := m.classes
	if len(classes) > numClasses {
		classes = classes[:numClasses]
	}

	cands := decodeYOLO(data, numClasses, dims[2], float32(th.Confidence), lb)
	return toDetections(nms(cands, float32(th.IoU)), classes), nil
}

// Loaded сообщает, загружена ли сеть.
func (m *GoCVModel) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Close освобождает сеть.
func (m *GoCVModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return nil
	}
	m.loaded = false
	return m.net.Close()
}

var _ port.Model = (*GoCVModel)(nil)
