package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"device-inspector/internal/domain/entity"
)

// Поддерживаемые бэкенды детектора.
const (
	BackendONNX        = "onnx"
	BackendGoCV        = "gocv"
	BackendRekognition = "rekognition"
)

// Политики поля battery_health в ответе.
const (
	BatteryEcho = "echo" // возвращаем значение из запроса
	BatteryZero = "zero" // всегда 0
)

type Config struct {
	HTTPAddr      string
	TelegramToken string // без токена бот не запускается

	DetectorBackend string
	ModelPath       string
	ModelClasses    []string
	ModelInputSize  int
	ONNXRuntimeLib  string
	ModelThreads    int

	ConfidenceThreshold float64
	IoUThreshold        float64
	RetryOnEmpty        bool
	RetryConfidence     float64
	RetryIoU            float64

	RekognitionProjectARN string
	AWSRegion             string
	SQSQueueURL           string

	DatabasePath  string
	HistoryLimit  int
	LogDirectory  string
	AllowOrigins  []string
	MaxUploadSize int64

	EncodeMaxSide     int
	EncodeJPEGQuality int
	ParallelViews     bool

	BatteryHealthPolicy string
	FramePolicy         string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		DetectorBackend: strings.ToLower(getEnv("DETECTOR_BACKEND", BackendONNX)),
		ModelPath:       getEnv("MODEL_PATH", "models/best.onnx"),
		ModelClasses:    getEnvAsList("MODEL_CLASSES", []string{"oil", "scratch", "stain"}),
		ModelInputSize:  getEnvAsInt("MODEL_INPUT_SIZE", 640),
		ONNXRuntimeLib:  os.Getenv("ONNXRUNTIME_LIB"),
		ModelThreads:    getEnvAsInt("MODEL_THREADS", 0),

		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.1),
		IoUThreshold:        getEnvAsFloat("IOU_THRESHOLD", 0.5),
		RetryOnEmpty:        getEnvAsBool("RETRY_ON_EMPTY", true),
		RetryConfidence:     getEnvAsFloat("RETRY_CONFIDENCE_THRESHOLD", 0.05),
		RetryIoU:            getEnvAsFloat("RETRY_IOU_THRESHOLD", 0.3),

		RekognitionProjectARN: os.Getenv("REKOGNITION_PROJECT_VERSION_ARN"),
		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		SQSQueueURL:           os.Getenv("SQS_QUEUE_URL"),

		DatabasePath:  getEnv("DATABASE_PATH", "inspections.db"),
		HistoryLimit:  getEnvAsInt("HISTORY_LIMIT", 50),
		LogDirectory:  os.Getenv("LOG_DIRECTORY"),
		AllowOrigins:  getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_MB", 32)) << 20,

		EncodeMaxSide:     getEnvAsInt("ENCODE_MAX_SIDE", 1280),
		EncodeJPEGQuality: getEnvAsInt("ENCODE_JPEG_QUALITY", 85),
		ParallelViews:     getEnvAsBool("INSPECT_PARALLEL_VIEWS", false),

		BatteryHealthPolicy: strings.ToLower(getEnv("BATTERY_HEALTH_POLICY", BatteryEcho)),
		FramePolicy:         strings.ToLower(getEnv("FRAME_CONDITION_POLICY", "stub")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения-перечисления и диапазоны.
func (c *Config) Validate() error {
	switch c.DetectorBackend {
	case BackendONNX, BackendGoCV, BackendRekognition:
	default:
		return fmt.Errorf("%w: unknown DETECTOR_BACKEND %q", entity.ErrConfig, c.DetectorBackend)
	}

	switch c.BatteryHealthPolicy {
	case BatteryEcho, BatteryZero:
	default:
		return fmt.Errorf("%w: unknown BATTERY_HEALTH_POLICY %q", entity.ErrConfig, c.BatteryHealthPolicy)
	}

	switch c.FramePolicy {
	case "stub", "computed":
	default:
		return fmt.Errorf("%w: unknown FRAME_CONDITION_POLICY %q", entity.ErrConfig, c.FramePolicy)
	}

	if len(c.ModelClasses) == 0 {
		return fmt.Errorf("%w: MODEL_CLASSES is empty", entity.ErrConfig)
	}
	if c.EncodeJPEGQuality < 1 || c.EncodeJPEGQuality > 100 {
		return fmt.Errorf("%w: ENCODE_JPEG_QUALITY must be in 1..100", entity.ErrConfig)
	}
	if c.EncodeMaxSide <= 0 || c.ModelInputSize <= 0 {
		return fmt.Errorf("%w: sizes must be positive", entity.ErrConfig)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
