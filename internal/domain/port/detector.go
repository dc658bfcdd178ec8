package port

import (
	"context"
	"image"

	"device-inspector/internal/domain/entity"
)

// Model внешняя модель детекции дефектов.
// Экземпляр загружается один раз и безопасен для конкурентного чтения.
type Model interface {
	// Predict запускает модель на одном изображении с заданными порогами
	Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error)

	// Loaded сообщает, загружена ли модель
	Loaded() bool

	// Close освобождает ресурсы модели
	Close() error
}

// DetectionAdapter граница между ядром оценки и моделью
type DetectionAdapter interface {
	// Detect возвращает срабатывания для одного ракурса, помеченные этим ракурсом
	Detect(ctx context.Context, view entity.View, img image.Image) ([]entity.Detection, error)

	// Loaded сообщает, загружена ли модель
	Loaded() bool
}
