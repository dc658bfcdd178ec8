package app

import (
	"context"
	"fmt"

	"device-inspector/internal/domain/entity"
)

// CaptureService ведёт пользователя через съёмку: сначала экран, потом задняя крышка.
type CaptureService struct {
	users       *UserService
	inspections *InspectionService
}

func NewCaptureService(users *UserService, inspections *InspectionService) *CaptureService {
	return &CaptureService{users: users, inspections: inspections}
}

// AcceptFrontPhoto запоминает фото экрана и переводит к съёмке задней крышки.
func (s *CaptureService) AcceptFrontPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.AttachPhoto(entity.ViewFront, photo)
	user.SetState(entity.StateAwaitingBackPhoto)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AcceptBackPhoto запоминает фото задней крышки и запускает осмотр.
func (s *CaptureService) AcceptBackPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.InspectionResult, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.AttachPhoto(entity.ViewBack, photo)
	return s.finish(ctx, user)
}

// Skip запускает осмотр без фото задней крышки.
func (s *CaptureService) Skip(ctx context.Context, userID, chatID int64) (*entity.InspectionResult, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if len(user.Photos[entity.ViewFront]) == 0 {
		return nil, fmt.Errorf("%w: front photo is not captured yet", entity.ErrInvalidInput)
	}

	return s.finish(ctx, user)
}

// finish осматривает собранные снимки и в любом случае возвращает пользователя в главное меню.
func (s *CaptureService) finish(ctx context.Context, user *entity.User) (*entity.InspectionResult, error) {
	user.SetState(entity.StateProcessing)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	images := make(map[string][]byte, len(user.Photos))
	for view, data := range user.Photos {
		images[string(view)] = data
	}

	result, inspectErr := s.inspections.Inspect(ctx, InspectionRequest{Images: images})

	user.ResetPhotos()
	user.SetState(entity.StateMainMenu)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	return result, inspectErr
}
