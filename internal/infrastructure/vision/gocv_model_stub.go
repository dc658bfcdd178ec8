//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// GoCVModel заглушка для сборки без OpenCV.
type GoCVModel struct{}

// NewGoCVModel возвращает ошибку, если сборка без тега gocv.
func NewGoCVModel(modelPath string, classes []string, inputSize int) (*GoCVModel, error) {
	_ = modelPath
	_ = classes
	_ = inputSize
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrConfig)
}

// Predict возвращает ошибку, если сборка без тега gocv.
func (m *GoCVModel) Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error) {
	_ = ctx
	_ = img
	_ = th
	return nil, errors.New("gocv build tag is not enabled")
}

// Loaded всегда false без OpenCV.
func (m *GoCVModel) Loaded() bool {
	return false
}

// Close ничего не делает.
func (m *GoCVModel) Close() error {
	return nil
}

var _ port.Model = (*GoCVModel)(nil)
