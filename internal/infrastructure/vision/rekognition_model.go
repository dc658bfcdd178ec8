package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// RekognitionAPI часть клиента Rekognition, которая нужна модели
type RekognitionAPI interface {
	DetectCustomLabels(ctx context.Context, params *rekognition.DetectCustomLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectCustomLabelsOutput, error)
}

// RekognitionModel детектор на AWS Rekognition Custom Labels.
// Порог IoU не применяется: подавление перекрытий делает сервис.
type RekognitionModel struct {
	client     RekognitionAPI
	projectARN string
	maxResults int32
}

// NewRekognitionModel создаёт модель для версии проекта Custom Labels.
func NewRekognitionModel(client RekognitionAPI, projectVersionARN string) (*RekognitionModel, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: rekognition client is nil", entity.ErrConfig)
	}
	if projectVersionARN == "" {
		return nil, fmt.Errorf("%w: REKOGNITION_PROJECT_VERSION_ARN is required", entity.ErrConfig)
	}
	return &RekognitionModel{client: client, projectARN: projectVersionARN, maxResults: 100}, nil
}

// Predict отправляет снимок в Rekognition и переводит относительные рамки в пиксели.
func (m *RekognitionModel) Predict(ctx context.Context, img image.Image, th entity.Thresholds) ([]entity.Detection, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode image for rekognition: %w", err)
	}

	out, err := m.client.DetectCustomLabels(ctx, &rekognition.DetectCustomLabelsInput{
		ProjectVersionArn: aws.String(m.projectARN),
		Image:             &types.Image{Bytes: buf.Bytes()},
		MinConfidence:     aws.Float32(float32(th.Confidence * 100)),
		MaxResults:        aws.Int32(m.maxResults),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectCustomLabels: %w", err)
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	detections := make([]entity.Detection, 0, len(out.CustomLabels))
	for _, label := range out.CustomLabels {
		// Метки без геометрии относятся ко всему снимку, это не дефект
		if label.Geometry == nil || label.Geometry.BoundingBox == nil {
			continue
		}
		box := label.Geometry.BoundingBox
		left := float64(aws.ToFloat32(box.Left))
		top := float64(aws.ToFloat32(box.Top))
		bw := float64(aws.ToFloat32(box.Width))
		bh := float64(aws.ToFloat32(box.Height))

		bbox := entity.BBox{
			X1: clamp64(left*w, 0, w),
			Y1: clamp64(top*h, 0, h),
			X2: clamp64((left+bw)*w, 0, w),
			Y2: clamp64((top+bh)*h, 0, h),
		}
		if bbox.Area() == 0 {
			continue
		}

		detections = append(detections, entity.Detection{
			ClassLabel: aws.ToString(label.Name),
			Confidence: float64(aws.ToFloat32(label.Confidence)) / 100,
			BBox:       bbox,
		})
	}

	return detections, nil
}

// Loaded модель считается загруженной, если клиент и проект заданы.
func (m *RekognitionModel) Loaded() bool {
	return m.client != nil && m.projectARN != ""
}

// Close у HTTP-клиента AWS нечего освобождать.
func (m *RekognitionModel) Close() error {
	return nil
}

func clamp64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ port.Model = (*RekognitionModel)(nil)
