package notify

import (
	"time"

	"device-inspector/internal/domain/entity"
)

// InspectionEvent краткое уведомление о завершённом осмотре.
// Снимки в уведомление не входят, их забирают по ID через API.
type InspectionEvent struct {
	Type          string          `json:"type"`
	ID            string          `json:"id"`
	Grade         entity.Grade    `json:"grade"`
	DamageScore   float64         `json:"damage_score"`
	DamageCount   int             `json:"damage_count"`
	Damages       []entity.Damage `json:"damages"`
	Summary       string          `json:"summary"`
	BatteryHealth int             `json:"battery_health"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EventFromResult собирает уведомление из результата осмотра.
func EventFromResult(result *entity.InspectionResult) InspectionEvent {
	damages := result.Damages
	if damages == nil {
		damages = []entity.Damage{}
	}
	return InspectionEvent{
		Type:          "inspection.completed",
		ID:            result.ID,
		Grade:         result.Grade,
		DamageScore:   result.DamageScore,
		DamageCount:   result.DamageCount(),
		Damages:       damages,
		Summary:       result.Report.Summary,
		BatteryHealth: result.BatteryHealth,
		CreatedAt:     result.CreatedAt,
	}
}
