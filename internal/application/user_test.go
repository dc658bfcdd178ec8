package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFrontPhoto, user.State)

	user.AttachPhoto(entity.ViewFront, []byte("front"))
	require.NoError(t, svc.Save(ctx, user))

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Empty(t, user.Photos)
}

func TestUserService_BeginCheckDropsOldPhotos(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Get(ctx, 1, 10)
	require.NoError(t, err)
	user.AttachPhoto(entity.ViewBack, []byte("stale"))
	require.NoError(t, svc.Save(ctx, user))

	user, err = svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, user.Photos)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateAwaitingBackPhoto)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingBackPhoto, user.State)
}
