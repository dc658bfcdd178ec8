package port

import (
	"context"

	"device-inspector/internal/domain/entity"
)

// UserRepository хранит шаг диалога и снимки незавершённой проверки.
// Реализации отдают копии: изменения видны другим только после Save.
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние и снимки пользователя
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет только шаг диалога; возврат в главное меню сбрасывает снимки
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
