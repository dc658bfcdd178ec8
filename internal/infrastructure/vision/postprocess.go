package vision

import (
	"sort"
	"strconv"

	"github.com/chewxy/math32"

	"device-inspector/internal/domain/entity"
)

// candidate срабатывание до подавления немаксимумов
type candidate struct {
	classID    int
	confidence float32
	x1, y1     float32
	x2, y2     float32
}

// letterbox параметры приведения снимка к квадратному входу модели
type letterbox struct {
	scale      float32 // во сколько раз уменьшен снимок
	padX, padY float32 // отступы слева и сверху
	srcW, srcH float32 // размер исходного снимка
}

// toSource переводит координаты входа модели в координаты снимка и обрезает по границам.
func (lb letterbox) toSource(x, y float32) (float32, float32) {
	sx := (x - lb.padX) / lb.scale
	sy := (y - lb.padY) / lb.scale
	return clamp(sx, 0, lb.srcW), clamp(sy, 0, lb.srcH)
}

// decodeYOLO разбирает выход головы YOLOv8 формы [1, 4+C, N]:
// для каждого якоря cx, cy, w, h и C вероятностей классов.
func decodeYOLO(output []float32, numClasses, numAnchors int, minConf float32, lb letterbox) []candidate {
	var out []candidate
	for i := 0; i < numAnchors; i++ {
		best := float32(-1)
		classID := -1
		for c := 0; c < numClasses; c++ {
			p := output[(4+c)*numAnchors+i]
			if p > best {
				best = p
				classID = c
			}
		}
		if best < minConf {
			continue
		}

		cx, cy := output[i], output[numAnchors+i]
		w, h := output[2*numAnchors+i], output[3*numAnchors+i]
		x1, y1 := lb.toSource(cx-w/2, cy-h/2)
		x2, y2 := lb.toSource(cx+w/2, cy+h/2)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		out = append(out, candidate{classID: classID, confidence: best, x1: x1, y1: y1, x2: x2, y2: y2})
	}
	return out
}

// nms подавляет перекрытия внутри класса. Возвращает кандидатов по убыванию уверенности.
func nms(cands []candidate, iouThreshold float32) []candidate {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].confidence > sorted[j].confidence
	})

	kept := make([]candidate, 0, len(sorted))
	for _, c := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.classID == c.classID && iou(k, c) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b candidate) float32 {
	ix1 := math32.Max(a.x1, b.x1)
	iy1 := math32.Max(a.y1, b.y1)
	ix2 := math32.Min(a.x2, b.x2)
	iy2 := math32.Min(a.y2, b.y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH
	union := (a.x2-a.x1)*(a.y2-a.y1) + (b.x2-b.x1)*(b.y2-b.y1) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}

// toDetections переводит кандидатов в срабатывания с именами классов.
func toDetections(cands []candidate, classes []string) []entity.Detection {
	out := make([]entity.Detection, 0, len(cands))
	for _, c := range cands {
		out = append(out, entity.Detection{
			ClassLabel: className(classes, c.classID),
			Confidence: float64(c.confidence),
			BBox: entity.BBox{
				X1: float64(c.x1), Y1: float64(c.y1),
				X2: float64(c.x2), Y2: float64(c.y2),
			},
		})
	}
	return out
}

func className(classes []string, id int) string {
	if id >= 0 && id < len(classes) {
		return classes[id]
	}
	return "class_" + strconv.Itoa(id)
}
