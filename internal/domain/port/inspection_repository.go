package port

import (
	"context"

	"device-inspector/internal/domain/entity"
)

// InspectionRepository история осмотров
type InspectionRepository interface {
	// Save сохраняет результат осмотра
	Save(ctx context.Context, result *entity.InspectionResult) error

	// Get возвращает осмотр по ID или entity.ErrNotFound
	Get(ctx context.Context, id string) (*entity.InspectionResult, error)

	// List возвращает последние осмотры, новые первыми
	List(ctx context.Context, limit int) ([]*entity.InspectionResult, error)
}

// ResultPublisher рассылает завершённые осмотры внешним подписчикам
type ResultPublisher interface {
	Publish(ctx context.Context, result *entity.InspectionResult) error
}
