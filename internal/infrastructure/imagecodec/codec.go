// Package imagecodec декодирует снимки устройства и кодирует результаты разметки.
package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	// Регистрируем gif для image.Decode внутри imaging.
	_ "image/gif"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

const (
	DefaultMaxSide     = 1280
	DefaultJPEGQuality = 85
)

// Codec реализует port.ImageCodec.
type Codec struct {
	MaxSide     int // максимальная сторона закодированного изображения
	JPEGQuality int
}

// New создаёт кодек с ограничением стороны и качеством JPEG.
func New(maxSide, quality int) *Codec {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Codec{MaxSide: maxSide, JPEGQuality: quality}
}

// Decode декодирует JPEG/PNG/GIF (с EXIF-поворотом) и WebP в непрозрачный RGBA.
func (c *Codec) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(entity.ErrDecode, "empty image data")
	}

	var (
		img image.Image
		err error
	)
	if isWebP(data) {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, errors.Wrapf(entity.ErrDecode, "decode image: %v", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Wrap(entity.ErrDecode, "decoded image is empty")
	}

	return toOpaqueRGB(img), nil
}

// Encode уменьшает изображение до MaxSide по большей стороне и кодирует в JPEG.
func (c *Codec) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}

	side := uint(c.MaxSide)
	bounded := resize.Thumbnail(side, side, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, bounded, &jpeg.Options{Quality: c.JPEGQuality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}

// toOpaqueRGB переносит изображение в RGBA с началом в (0,0) и альфой 255.
// Прозрачные области ложатся на белый фон.
func toOpaqueRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

var _ port.ImageCodec = (*Codec)(nil)
