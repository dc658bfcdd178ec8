package vision

import (
	"context"
	"image"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/logger"
)

// Policy пороги вызова модели и правило повтора при пустом результате.
type Policy struct {
	Primary      entity.Thresholds
	RetryOnEmpty bool
	Fallback     entity.Thresholds
}

// DefaultPolicy первый проход conf=0.1/iou=0.5, при пустом ответе conf=0.05/iou=0.3.
func DefaultPolicy() Policy {
	return Policy{
		Primary:      entity.Thresholds{Confidence: 0.1, IoU: 0.5},
		RetryOnEmpty: true,
		Fallback:     entity.Thresholds{Confidence: 0.05, IoU: 0.3},
	}
}

// Adapter реализует port.DetectionAdapter поверх модели.
// Повтор при пустом результате живёт здесь, а не в классификаторе.
type Adapter struct {
	model  port.Model
	policy Policy
	logger *logger.Logger
}

// NewAdapter создаёт адаптер детектора.
func NewAdapter(model port.Model, policy Policy, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	return &Adapter{model: model, policy: policy, logger: log}
}

// Detect запускает модель на снимке ракурса и помечает срабатывания ракурсом.
func (a *Adapter) Detect(ctx context.Context, view entity.View, img image.Image) ([]entity.Detection, error) {
	detections, err := a.model.Predict(ctx, img, a.policy.Primary)
	if err != nil {
		return nil, &entity.AdapterError{View: view, Err: err}
	}

	if len(detections) == 0 && a.policy.RetryOnEmpty {
		a.logger.Warning("%s: no detections (conf=%.2f), retrying with conf=%.2f iou=%.2f",
			view, a.policy.Primary.Confidence, a.policy.Fallback.Confidence, a.policy.Fallback.IoU)

		detections, err = a.model.Predict(ctx, img, a.policy.Fallback)
		if err != nil {
			return nil, &entity.AdapterError{View: view, Err: err}
		}
		if len(detections) > 0 {
			a.logger.Info("%s: retry found %d detection(s)", view, len(detections))
		}
	}

	out := make([]entity.Detection, len(detections))
	for i, d := range detections {
		d.View = view
		out[i] = d
	}

	a.logStats(view, out)
	return out, nil
}

// Loaded сообщает, загружена ли модель.
func (a *Adapter) Loaded() bool {
	return a.model != nil && a.model.Loaded()
}

func (a *Adapter) logStats(view entity.View, detections []entity.Detection) {
	a.logger.Info("%s: %d detection(s)", view, len(detections))
	if len(detections) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, d := range detections {
		counts[d.ClassLabel]++
		a.logger.Info("%s: %s conf=%.3f bbox=[%.0f, %.0f, %.0f, %.0f] area=%.0fpx mask=%dpx",
			view, d.ClassLabel, d.Confidence, d.BBox.X1, d.BBox.Y1, d.BBox.X2, d.BBox.Y2, d.BBox.Area(), d.MaskArea)
	}
	a.logger.Info("%s: per-class counts %v", view, counts)
}

var _ port.DetectionAdapter = (*Adapter)(nil)
