package grading

import (
	"fmt"
	"strings"

	"device-inspector/internal/domain/entity"
)

// FramePolicy как заполнять состояние рамки, для которой нет снимка.
type FramePolicy string

const (
	// FramePolicyStub рамка всегда "healthy".
	FramePolicyStub FramePolicy = "stub"
	// FramePolicyComputed рамка считается как остальные зоны по подстроке "frame".
	FramePolicyComputed FramePolicy = "computed"
)

// ParseFramePolicy проверяет имя политики рамки.
func ParseFramePolicy(name string) (FramePolicy, error) {
	switch p := FramePolicy(strings.ToLower(name)); p {
	case FramePolicyStub, FramePolicyComputed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown frame policy %q", name)
	}
}

// TrackedArea зона отчёта и подстрока, по которой к ней относятся повреждения.
type TrackedArea struct {
	Token string
	Name  string
}

var (
	ScreenArea = TrackedArea{Token: "front", Name: "screen"}
	BackArea   = TrackedArea{Token: "back", Name: "back"}
	FrameArea  = TrackedArea{Token: "frame", Name: "frame"}
)

// Assessments текст общей оценки для каждой буквы.
var Assessments = map[entity.Grade]string{
	entity.GradeS: "Excellent condition. Practically indistinguishable from new.",
	entity.GradeA: "Very good condition. Only minor signs of use.",
	entity.GradeB: "Good condition. Some visible signs of use.",
	entity.GradeC: "Fair condition. Clear signs of use.",
	entity.GradeD: "Poor condition. Significant damage present.",
}

// ReportOptions настройки композиции отчёта.
type ReportOptions struct {
	Frame FramePolicy
}

// Compose собирает текст отчёта. Для неизвестной оценки возвращает ErrUnknownGrade.
func Compose(damages []entity.Damage, grade entity.Grade, opts ReportOptions) (entity.Report, error) {
	assessment, ok := Assessments[grade]
	if !ok {
		return entity.Report{}, fmt.Errorf("%w: %s", entity.ErrUnknownGrade, grade)
	}

	frame := AreaCondition(FrameArea, 0)
	if opts.Frame == FramePolicyComputed {
		frame = AreaCondition(FrameArea, CountInArea(damages, FrameArea))
	}

	return entity.Report{
		ScreenCondition:   AreaCondition(ScreenArea, CountInArea(damages, ScreenArea)),
		BackCondition:     AreaCondition(BackArea, CountInArea(damages, BackArea)),
		FrameCondition:    frame,
		Summary:           fmt.Sprintf("%d defect(s) detected, grade: %s", len(damages), grade),
		OverallAssessment: assessment,
	}, nil
}

// CountInArea считает повреждения, чьё положение содержит подстроку зоны.
func CountInArea(damages []entity.Damage, area TrackedArea) int {
	n := 0
	for _, d := range damages {
		if strings.Contains(strings.ToLower(d.Location), area.Token) {
			n++
		}
	}
	return n
}

// AreaCondition строка состояния зоны.
func AreaCondition(area TrackedArea, count int) string {
	if count == 0 {
		return area.Name + ": healthy"
	}
	return fmt.Sprintf("%s: %d defect(s) detected", area.Name, count)
}
