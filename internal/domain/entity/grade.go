package entity

import "fmt"

// Grade итоговая оценка состояния, от лучшей (S) к худшей (D)
type Grade int

const (
	GradeS Grade = iota
	GradeA
	GradeB
	GradeC
	GradeD
)

var gradeNames = [...]string{"S", "A", "B", "C", "D"}

func (g Grade) String() string {
	if g.Valid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Valid сообщает, входит ли значение в перечисление.
func (g Grade) Valid() bool {
	return g >= GradeS && g <= GradeD
}

// MarshalText отдаёт букву оценки для JSON.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("unknown grade %d", int(g))
	}
	return []byte(gradeNames[g]), nil
}

// ParseGrade разбирает букву оценки.
func ParseGrade(name string) (Grade, error) {
	for i, n := range gradeNames {
		if n == name {
			return Grade(i), nil
		}
	}
	return GradeD, fmt.Errorf("unknown grade %q", name)
}

// UnmarshalText разбирает букву оценки из JSON.
func (g *Grade) UnmarshalText(text []byte) error {
	parsed, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
