package grading

import (
	"strings"

	"device-inspector/internal/domain/entity"
)

// AreaWeight вес зоны устройства по подстроке в Location.
type AreaWeight struct {
	Token  string
	Weight float64
}

// AreaWeights таблица весов зон. Первое совпадение побеждает.
var AreaWeights = []AreaWeight{
	{Token: "front", Weight: 3.0},
	{Token: "back", Weight: 2.0},
}

// DefaultAreaWeight вес зоны, не найденной в таблице.
const DefaultAreaWeight = 1.0

// SeverityWeights вес степени повреждения.
var SeverityWeights = map[entity.Severity]float64{
	entity.SeveritySevere:   2.0,
	entity.SeverityModerate: 1.0,
	entity.SeverityMinor:    0.5,
	entity.SeverityNone:     0.0,
}

// GradeBand верхняя граница балла (включительно) для оценки.
type GradeBand struct {
	MaxScore float64
	Grade    entity.Grade
}

// GradeBands полосы оценок для ненулевого балла, по возрастанию границы.
// Балл выше последней границы даёт D.
var GradeBands = []GradeBand{
	{MaxScore: 2, Grade: entity.GradeA},
	{MaxScore: 8, Grade: entity.GradeB},
	{MaxScore: 15, Grade: entity.GradeC},
}

// AreaWeightFor возвращает вес зоны по строке положения.
func AreaWeightFor(location string) float64 {
	loc := strings.ToLower(location)
	for _, aw := range AreaWeights {
		if strings.Contains(loc, aw.Token) {
			return aw.Weight
		}
	}
	return DefaultAreaWeight
}

// Score считает взвешенный балл повреждений. От порядка не зависит.
func Score(damages []entity.Damage) float64 {
	var score float64
	for _, d := range damages {
		score += AreaWeightFor(d.Location) * SeverityWeights[d.Severity]
	}
	return score
}

// Grade выставляет итоговую оценку и возвращает балл.
// Любое severe повреждение даёт D независимо от балла.
func Grade(damages []entity.Damage) (entity.Grade, float64) {
	score := Score(damages)

	for _, d := range damages {
		if d.Severity == entity.SeveritySevere {
			return entity.GradeD, score
		}
	}

	return GradeForScore(score), score
}

// GradeForScore переводит балл в оценку без учёта правила severe.
func GradeForScore(score float64) entity.Grade {
	if score == 0 {
		return entity.GradeS
	}
	for _, band := range GradeBands {
		if score <= band.MaxScore {
			return band.Grade
		}
	}
	return entity.GradeD
}
