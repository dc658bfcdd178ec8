package port

import (
	"image"

	"device-inspector/internal/domain/entity"
)

// ImageCodec декодирование и кодирование снимков
type ImageCodec interface {
	// Decode превращает байты снимка в RGB-изображение с учётом EXIF-ориентации
	Decode(data []byte) (image.Image, error)

	// Encode сжимает изображение в JPEG ограниченного размера
	Encode(img image.Image) ([]byte, error)
}

// Renderer рисует разметку срабатываний на копии изображения
type Renderer interface {
	Render(img image.Image, detections []entity.Detection) image.Image
}
