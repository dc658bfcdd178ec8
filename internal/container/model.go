package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"device-inspector/config"
	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/infrastructure/vision"
	"device-inspector/internal/logger"
)

// LoadAWS загружает стандартную конфигурацию AWS для региона из настроек.
func LoadAWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewModel создаёт модель выбранного бэкенда. Ошибки загрузки оборачивают entity.ErrConfig.
func NewModel(ctx context.Context, cfg *config.Config, log *logger.Logger) (port.Model, error) {
	switch cfg.DetectorBackend {
	case config.BackendONNX:
		model, err := vision.NewONNXModel(vision.ONNXConfig{
			ModelPath:  cfg.ModelPath,
			SharedLib:  cfg.ONNXRuntimeLib,
			Classes:    cfg.ModelClasses,
			InputSize:  cfg.ModelInputSize,
			NumThreads: cfg.ModelThreads,
		})
		if err != nil {
			return nil, asConfigError(err)
		}
		log.Info("ONNX model loaded from %s, classes: %v", cfg.ModelPath, model.Classes())
		return model, nil

	case config.BackendGoCV:
		model, err := vision.NewGoCVModel(cfg.ModelPath, cfg.ModelClasses, cfg.ModelInputSize)
		if err != nil {
			return nil, asConfigError(err)
		}
		log.Info("OpenCV DNN model loaded from %s, classes: %v", cfg.ModelPath, cfg.ModelClasses)
		return model, nil

	case config.BackendRekognition:
		awsCfg, err := LoadAWS(ctx, cfg)
		if err != nil {
			return nil, asConfigError(err)
		}
		model, err := vision.NewRekognitionModel(rekognition.NewFromConfig(awsCfg), cfg.RekognitionProjectARN)
		if err != nil {
			return nil, err
		}
		log.Info("Rekognition Custom Labels model %s in %s", cfg.RekognitionProjectARN, cfg.AWSRegion)
		return model, nil

	default:
		return nil, fmt.Errorf("%w: unknown detector backend %q", entity.ErrConfig, cfg.DetectorBackend)
	}
}

func asConfigError(err error) error {
	if errors.Is(err, entity.ErrConfig) {
		return err
	}
	return fmt.Errorf("%w: %v", entity.ErrConfig, err)
}
