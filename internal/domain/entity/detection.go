package entity

import (
	"image"
	"math"
)

// View ракурс съёмки устройства
type View string

const (
	ViewFront View = "front" // Лицевая сторона (экран)
	ViewBack  View = "back"  // Задняя крышка
)

// InspectedViews ракурсы, которые участвуют в оценке, в порядке обхода.
var InspectedViews = []View{ViewFront, ViewBack}

// ParseView возвращает ракурс по имени. Имя сравнивается точно:
// регистр и пробелы не нормализуются, "Front" ракурсом не является.
func ParseView(name string) (View, bool) {
	switch View(name) {
	case ViewFront:
		return ViewFront, true
	case ViewBack:
		return ViewBack, true
	default:
		return "", false
	}
}

// BBox прямоугольник дефекта в пиксельных координатах изображения
type BBox struct {
	X1, Y1 float64 // левый верхний угол
	X2, Y2 float64 // правый нижний угол
}

// Width возвращает ширину прямоугольника
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height возвращает высоту прямоугольника
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Area возвращает площадь прямоугольника в пикселях
func (b BBox) Area() float64 {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Rect переводит прямоугольник в целочисленный image.Rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X1)), int(math.Floor(b.Y1)),
		int(math.Ceil(b.X2)), int(math.Ceil(b.Y2)),
	).Canon()
}

// Detection одно срабатывание модели на изображении
type Detection struct {
	ClassLabel string  // класс дефекта
	Confidence float64 // уверенность модели, 0..1
	BBox       BBox    // положение дефекта
	MaskArea   int     // площадь маски в пикселях, 0 если маски нет
	View       View    // ракурс, на котором найден дефект
}

// Thresholds пороги вызова модели
type Thresholds struct {
	Confidence float64
	IoU        float64
}
