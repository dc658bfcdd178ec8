package notify

import (
	"context"
	"errors"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// MultiPublisher отправляет уведомление всем издателям и собирает их ошибки.
type MultiPublisher []port.ResultPublisher

func (m MultiPublisher) Publish(ctx context.Context, result *entity.InspectionResult) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ port.ResultPublisher = MultiPublisher(nil)
