package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// padGray цвет полей при letterbox, как у ultralytics
var padGray = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// letterboxImage вписывает снимок в квадрат size×size с сохранением пропорций.
func letterboxImage(img image.Image, size int) (*image.RGBA, letterbox) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := float32(size) / float32(w)
	if s := float32(size) / float32(h); s < scale {
		scale = s
	}
	newW := int(float32(w)*scale + 0.5)
	newH := int(float32(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Bilinear)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(padGray), image.Point{}, draw.Src)

	padX := (size - newW) / 2
	padY := (size - newH) / 2
	draw.Draw(dst, image.Rect(padX, padY, padX+newW, padY+newH), resized, resized.Bounds().Min, draw.Src)

	return dst, letterbox{
		scale: scale,
		padX:  float32(padX),
		padY:  float32(padY),
		srcW:  float32(w),
		srcH:  float32(h),
	}
}

// fillCHW раскладывает RGBA-изображение size×size в тензор [3, size, size], значения 0..1.
func fillCHW(dst []float32, img *image.RGBA, size int) error {
	channel := size * size
	if len(dst) < channel*3 {
		return fmt.Errorf("tensor holds %d floats, needs %d", len(dst), channel*3)
	}

	red := dst[0:channel]
	green := dst[channel : 2*channel]
	blue := dst[2*channel : 3*channel]

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := img.RGBAAt(x, y)
			red[i] = float32(c.R) / 255.0
			green[i] = float32(c.G) / 255.0
			blue[i] = float32(c.B) / 255.0
			i++
		}
	}
	return nil
}
