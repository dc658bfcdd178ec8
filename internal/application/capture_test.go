package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/infrastructure/storage"
)

func newCapture(adapter *stubAdapter) (*CaptureService, *UserService) {
	users := NewUserService(storage.NewMemoryUserRepository())
	return NewCaptureService(users, newService(adapter, InspectionOptions{})), users
}

func TestCaptureService_FrontThenBack(t *testing.T) {
	adapter := scratchFront()
	capture, users := newCapture(adapter)
	ctx := context.Background()

	_, err := users.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)

	user, err := capture.AcceptFrontPhoto(ctx, 1, 10, []byte("front"))
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingBackPhoto, user.State)

	result, err := capture.AcceptBackPhoto(ctx, 1, 10, []byte("back"))
	require.NoError(t, err)
	require.Equal(t, entity.GradeA, result.Grade)
	require.ElementsMatch(t, []entity.View{entity.ViewFront, entity.ViewBack}, adapter.calls)

	user, err = users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Empty(t, user.Photos)
}

func TestCaptureService_Skip(t *testing.T) {
	adapter := scratchFront()
	capture, _ := newCapture(adapter)
	ctx := context.Background()

	_, err := capture.Skip(ctx, 1, 10)
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = capture.AcceptFrontPhoto(ctx, 1, 10, []byte("front"))
	require.NoError(t, err)

	result, err := capture.Skip(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, []entity.View{entity.ViewFront}, adapter.calls)
	require.Equal(t, "back: healthy", result.Report.BackCondition)
}

func TestCaptureService_FailureReturnsToMenu(t *testing.T) {
	capture, users := newCapture(scratchFront())
	ctx := context.Background()

	_, err := capture.AcceptFrontPhoto(ctx, 1, 10, []byte("garbage"))
	require.NoError(t, err)

	_, err = capture.AcceptBackPhoto(ctx, 1, 10, []byte("back"))
	require.ErrorIs(t, err, entity.ErrDecode)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Empty(t, user.Photos)
}
