package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "")
	t.Setenv("MODEL_CLASSES", "")
	t.Setenv("BATTERY_HEALTH_POLICY", "")
	t.Setenv("FRAME_CONDITION_POLICY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendONNX, cfg.DetectorBackend)
	require.Equal(t, []string{"oil", "scratch", "stain"}, cfg.ModelClasses)
	require.Equal(t, BatteryEcho, cfg.BatteryHealthPolicy)
	require.Equal(t, "stub", cfg.FramePolicy)
	require.Equal(t, 50, cfg.HistoryLimit)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "GoCV")
	t.Setenv("MODEL_CLASSES", "crack, scratch ,,stain")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.25")
	t.Setenv("RETRY_ON_EMPTY", "false")
	t.Setenv("INSPECT_PARALLEL_VIEWS", "true")
	t.Setenv("BATTERY_HEALTH_POLICY", "zero")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://shop.local")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendGoCV, cfg.DetectorBackend)
	require.Equal(t, []string{"crack", "scratch", "stain"}, cfg.ModelClasses)
	require.Equal(t, 0.25, cfg.ConfidenceThreshold)
	require.False(t, cfg.RetryOnEmpty)
	require.True(t, cfg.ParallelViews)
	require.Equal(t, BatteryZero, cfg.BatteryHealthPolicy)
	require.Equal(t, int64(8<<20), cfg.MaxUploadSize)
	require.Equal(t, []string{"http://shop.local"}, cfg.AllowOrigins)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "tensorflow")

	_, err := Load()
	require.ErrorIs(t, err, entity.ErrConfig)
}

func TestValidate_BadQuality(t *testing.T) {
	cfg := &Config{
		DetectorBackend:     BackendONNX,
		BatteryHealthPolicy: BatteryEcho,
		FramePolicy:         "computed",
		ModelClasses:        []string{"scratch"},
		EncodeJPEGQuality:   0,
		EncodeMaxSide:       100,
		ModelInputSize:      640,
	}
	require.ErrorIs(t, cfg.Validate(), entity.ErrConfig)

	cfg.EncodeJPEGQuality = 90
	require.NoError(t, cfg.Validate())
}
