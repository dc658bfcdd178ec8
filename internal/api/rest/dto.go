package rest

import (
	"encoding/base64"
	"strings"
	"time"

	"device-inspector/internal/domain/entity"
)

// InspectRequest тело POST /api/inspect. Снимки в base64, допускается префикс data URL.
type InspectRequest struct {
	Images        map[string]string `json:"images" binding:"required"`
	BatteryHealth int               `json:"battery_health"`
}

// InspectResponse результат осмотра для клиента.
type InspectResponse struct {
	ID                string            `json:"id"`
	Grade             entity.Grade      `json:"grade"`
	DamageScore       float64           `json:"damageScore"`
	Summary           string            `json:"summary"`
	BatteryHealth     int               `json:"batteryHealth"`
	ScreenCondition   string            `json:"screenCondition"`
	BackCondition     string            `json:"backCondition"`
	FrameCondition    string            `json:"frameCondition"`
	OverallAssessment string            `json:"overallAssessment"`
	Damages           []entity.Damage   `json:"damages"`
	VisualizedImages  map[string]string `json:"visualizedImages,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

func toResponse(result *entity.InspectionResult) InspectResponse {
	damages := result.Damages
	if damages == nil {
		damages = []entity.Damage{}
	}

	var images map[string]string
	if len(result.Visualized) > 0 {
		images = make(map[string]string, len(result.Visualized))
		for view, data := range result.Visualized {
			images[string(view)] = base64.StdEncoding.EncodeToString(data)
		}
	}

	return InspectResponse{
		ID:                result.ID,
		Grade:             result.Grade,
		DamageScore:       result.DamageScore,
		Summary:           result.Report.Summary,
		BatteryHealth:     result.BatteryHealth,
		ScreenCondition:   result.Report.ScreenCondition,
		BackCondition:     result.Report.BackCondition,
		FrameCondition:    result.Report.FrameCondition,
		OverallAssessment: result.Report.OverallAssessment,
		Damages:           damages,
		VisualizedImages:  images,
		CreatedAt:         result.CreatedAt,
	}
}

// decodeImage снимает префикс "data:image/...;base64," и декодирует base64.
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(encoded); rawErr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

// truncate обрезает строку до n символов.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
