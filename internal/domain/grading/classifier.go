// Package grading содержит детерминированную часть оценки: степень
// повреждения, взвешенный балл, итоговую оценку и текст отчёта.
package grading

import (
	"strings"

	"device-inspector/internal/domain/entity"
)

// StructuralKeywords классы, которые означают повреждение корпуса или стекла.
// Порядок важен только для аудита: совпадение любого слова даёт severe.
var StructuralKeywords = []string{"crack", "broken", "shatter", "fracture", "chip"}

const (
	// VolumeSevereCount число срабатываний на ракурсе, начиная с которого всё severe.
	VolumeSevereCount = 5
	// ConfidentSevereCount число срабатываний для правила высокой уверенности.
	ConfidentSevereCount = 3
	// ConfidentSevereConfidence порог уверенности для правила высокой уверенности.
	ConfidentSevereConfidence = 0.6
	// ModerateConfidence порог уверенности для moderate.
	ModerateConfidence = 0.3
)

// Classify определяет степень повреждения одного срабатывания.
// viewCount: общее число срабатываний на ракурсе, а не по классу.
// Правила проверяются строго по порядку, первое совпадение побеждает.
func Classify(viewCount int, confidence float64, classLabel string) entity.Severity {
	switch {
	case viewCount == 0:
		return entity.SeverityNone
	case IsStructural(classLabel):
		return entity.SeveritySevere
	case viewCount >= VolumeSevereCount:
		return entity.SeveritySevere
	case confidence > ConfidentSevereConfidence && viewCount >= ConfidentSevereCount:
		return entity.SeveritySevere
	case confidence > ModerateConfidence:
		return entity.SeverityModerate
	default:
		return entity.SeverityMinor
	}
}

// IsStructural сообщает, содержит ли класс одно из ключевых слов (без учёта регистра).
func IsStructural(classLabel string) bool {
	label := strings.ToLower(classLabel)
	for _, kw := range StructuralKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}
