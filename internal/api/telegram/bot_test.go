package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
)

func TestFormatResult(t *testing.T) {
	result := &entity.InspectionResult{
		Grade:       entity.GradeB,
		DamageScore: 4,
		Damages: []entity.Damage{
			{Type: "stain", Location: "back - bbox: [1, 2, 3, 4]", Severity: entity.SeverityModerate},
		},
		Report: entity.Report{
			ScreenCondition:   "screen: healthy",
			BackCondition:     "back: 1 defect(s) detected",
			FrameCondition:    "frame: healthy",
			Summary:           "1 defect(s) detected, grade: B",
			OverallAssessment: "Good condition. Some visible signs of use.",
		},
	}

	text := FormatResult(result)
	require.Contains(t, text, "Оценка: B (баллы: 4.0)")
	require.Contains(t, text, "back: 1 defect(s) detected")
	require.Contains(t, text, "1. stain, moderate (back - bbox: [1, 2, 3, 4])")
	require.Contains(t, text, "1 defect(s) detected, grade: B")
}

func TestFormatResult_NoDamages(t *testing.T) {
	text := FormatResult(&entity.InspectionResult{Grade: entity.GradeS})
	require.NotContains(t, text, "Повреждения")
	require.Contains(t, text, "✅")
}

func TestPromptFor(t *testing.T) {
	require.Equal(t, msgAwaitingFront, promptFor(entity.StateAwaitingFrontPhoto))
	require.Equal(t, msgAwaitingBack, promptFor(entity.StateAwaitingBackPhoto))
	require.Equal(t, msgBusy, promptFor(entity.StateProcessing))
	require.Equal(t, msgSendCheck, promptFor(entity.StateMainMenu))
}

func TestImageFileID(t *testing.T) {
	id, ok := imageFileID(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}})
	require.True(t, ok)
	require.Equal(t, "large", id)

	id, ok = imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"}})
	require.True(t, ok)
	require.Equal(t, "doc", id)

	_, ok = imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "pdf", MimeType: "application/pdf"}})
	require.False(t, ok)

	_, ok = imageFileID(&tgbotapi.Message{Text: "hello"})
	require.False(t, ok)
}

func TestViewCaption(t *testing.T) {
	require.Equal(t, "Экран: дефекты не обнаружены", viewCaption(entity.ViewFront, 0))
	require.Equal(t, "Задняя крышка: найдено 2", viewCaption(entity.ViewBack, 2))
}
