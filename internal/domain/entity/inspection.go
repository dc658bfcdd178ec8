package entity

import "time"

// Report текстовая часть отчёта по осмотру.
type Report struct {
	ScreenCondition   string // состояние экрана
	BackCondition     string // состояние задней крышки
	FrameCondition    string // состояние рамки (снимка нет)
	Summary           string // краткий итог
	OverallAssessment string // общая оценка
}

// InspectionResult хранит итог осмотра устройства.
type InspectionResult struct {
	ID            string
	Grade         Grade
	DamageScore   float64
	Damages       []Damage // порядок: ракурс, затем номер срабатывания
	Report        Report
	BatteryHealth int
	Detections    map[View][]Detection // сырые срабатывания по ракурсам
	Visualized    map[View][]byte      // JPEG с разметкой по ракурсам
	CreatedAt     time.Time
}

// DamageCount возвращает число повреждений.
func (r *InspectionResult) DamageCount() int {
	return len(r.Damages)
}
