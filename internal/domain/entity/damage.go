package entity

import (
	"fmt"
	"math"
)

// Severity степень повреждения. Значения упорядочены по возрастанию.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
)

var severityNames = map[Severity]string{
	SeverityNone:     "none",
	SeverityMinor:    "minor",
	SeverityModerate: "moderate",
	SeveritySevere:   "severe",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText отдаёт текстовое имя степени для JSON.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(name), nil
}

// ParseSeverity разбирает текстовое имя степени.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if n == name {
			return s, nil
		}
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", name)
}

// UnmarshalText разбирает текстовое имя степени из JSON.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Damage повреждение, прошедшее классификацию (степень не none)
type Damage struct {
	Type     string   `json:"type"`     // класс дефекта
	Location string   `json:"location"` // ракурс и положение
	Severity Severity `json:"severity"` // степень
}

// DamageLocation формирует строку положения: ракурс и округлённый bbox.
func DamageLocation(view View, box BBox) string {
	return fmt.Sprintf("%s - bbox: [%d, %d, %d, %d]", view,
		int(math.Round(box.X1)), int(math.Round(box.Y1)),
		int(math.Round(box.X2)), int(math.Round(box.Y2)))
}
