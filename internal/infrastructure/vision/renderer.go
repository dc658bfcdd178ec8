package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// Palette цвет рамки по классу дефекта
var Palette = map[string]color.RGBA{
	"oil":     {R: 255, A: 255},
	"scratch": {G: 255, A: 255},
	"stain":   {B: 255, A: 255},
}

// DefaultColor цвет для классов вне палитры
var DefaultColor = color.RGBA{R: 255, G: 255, A: 255}

const (
	boxThickness = 3
	labelPadding = 2
)

// Renderer рисует рамки и подписи срабатываний на копии снимка.
type Renderer struct {
	face font.Face
}

// NewRenderer создаёт рендерер со встроенным растровым шрифтом.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Render возвращает снимок с разметкой. Без срабатываний возвращает исходный снимок.
// Исходное изображение не изменяется.
func (r *Renderer) Render(img image.Image, detections []entity.Detection) image.Image {
	if len(detections) == 0 {
		return img
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	for _, d := range detections {
		clr := ColorFor(d.ClassLabel)
		rect := d.BBox.Rect().Add(bounds.Min).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		drawOutline(canvas, rect, clr, boxThickness)
		r.drawLabel(canvas, rect, Label(d), clr)
	}

	return canvas
}

// ColorFor возвращает цвет класса.
func ColorFor(classLabel string) color.RGBA {
	if c, ok := Palette[classLabel]; ok {
		return c
	}
	return DefaultColor
}

// Label текст подписи: класс и уверенность с двумя знаками.
func Label(d entity.Detection) string {
	return fmt.Sprintf("%s %.2f", d.ClassLabel, d.Confidence)
}

// LabelRect положение плашки подписи размером w×h для рамки rect.
// Плашка стоит над левым верхним углом рамки; у верхнего края уходит внутрь рамки,
// у правого края сдвигается влево.
func LabelRect(rect, bounds image.Rectangle, w, h int) image.Rectangle {
	left := rect.Min.X
	top := rect.Min.Y - h
	if top < bounds.Min.Y {
		top = rect.Min.Y
	}
	if top+h > bounds.Max.Y {
		top = bounds.Max.Y - h
	}
	if top < bounds.Min.Y {
		top = bounds.Min.Y
	}

	if left+w > bounds.Max.X {
		left = bounds.Max.X - w
	}
	if left < bounds.Min.X {
		left = bounds.Min.X
	}

	return image.Rect(left, top, left+w, top+h).Intersect(bounds)
}

func (r *Renderer) drawLabel(canvas *image.RGBA, rect image.Rectangle, text string, clr color.RGBA) {
	metrics := r.face.Metrics()
	textW := font.MeasureString(r.face, text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()

	box := LabelRect(rect, canvas.Bounds(), textW+2*labelPadding, textH+2*labelPadding)
	draw.Draw(canvas, box, image.NewUniform(clr), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: r.face,
		Dot:  fixed.P(box.Min.X+labelPadding, box.Min.Y+labelPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

// drawOutline рисует контур прямоугольника толщиной t внутрь.
func drawOutline(canvas *image.RGBA, rect image.Rectangle, clr color.RGBA, t int) {
	src := image.NewUniform(clr)
	sides := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t),
		image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y),
		image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, s := range sides {
		draw.Draw(canvas, s.Intersect(rect), src, image.Point{}, draw.Src)
	}
}

var _ port.Renderer = (*Renderer)(nil)
