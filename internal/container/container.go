package container

import (
	"fmt"

	"device-inspector/config"
	app "device-inspector/internal/application"
	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/grading"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/infrastructure/imagecodec"
	"device-inspector/internal/infrastructure/vision"
	"device-inspector/internal/logger"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	CaptureService    *app.CaptureService
}

// Deps внешние зависимости. Model обязательна, хранилище и издатель могут быть nil.
type Deps struct {
	Model       port.Model
	Users       port.UserRepository
	Inspections port.InspectionRepository
	Publisher   port.ResultPublisher
	Logger      *logger.Logger
}

func New(cfg *config.Config, deps Deps) (*Container, error) {
	if deps.Model == nil {
		return nil, fmt.Errorf("%w: detection model is not provided", entity.ErrConfig)
	}

	opts, err := inspectionOptions(cfg)
	if err != nil {
		return nil, err
	}

	policy := vision.Policy{
		Primary:      entity.Thresholds{Confidence: cfg.ConfidenceThreshold, IoU: cfg.IoUThreshold},
		RetryOnEmpty: cfg.RetryOnEmpty,
		Fallback:     entity.Thresholds{Confidence: cfg.RetryConfidence, IoU: cfg.RetryIoU},
	}
	adapter := vision.NewAdapter(deps.Model, policy, deps.Logger)
	codec := imagecodec.New(cfg.EncodeMaxSide, cfg.EncodeJPEGQuality)

	userService := app.NewUserService(deps.Users)
	inspectionService := app.NewInspectionService(
		adapter, codec, vision.NewRenderer(), deps.Inspections, deps.Publisher, opts, deps.Logger)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
		CaptureService:    app.NewCaptureService(userService, inspectionService),
	}, nil
}

func inspectionOptions(cfg *config.Config) (app.InspectionOptions, error) {
	battery, err := app.ParseBatteryPolicy(cfg.BatteryHealthPolicy)
	if err != nil {
		return app.InspectionOptions{}, err
	}
	frame, err := grading.ParseFramePolicy(cfg.FramePolicy)
	if err != nil {
		return app.InspectionOptions{}, fmt.Errorf("%w: %v", entity.ErrConfig, err)
	}

	return app.InspectionOptions{
		ParallelViews: cfg.ParallelViews,
		Battery:       battery,
		Report:        grading.ReportOptions{Frame: frame},
	}, nil
}
