package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "device-inspector/internal/application"
	"device-inspector/internal/domain/entity"
	"device-inspector/internal/logger"
)

const (
	msgStart = `👋 Привет! Я оцениваю внешнее состояние смартфона по фотографиям.

📸 Понадобятся два снимка: экран и задняя крышка.

📋 Команды:
/check: начать проверку устройства
/help: справка
/cancel: отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Пришлите фото экрана
3️⃣ Пришлите фото задней крышки или /skip, чтобы оценить только экран
4️⃣ Получите оценку S, A, B, C или D и фото с отмеченными дефектами

💡 Рекомендации:
• Снимайте при хорошем освещении
• Устройство должно занимать почти весь кадр
• Избегайте бликов на экране

📋 Команды:
/check: начать проверку
/skip: пропустить фото задней крышки
/cancel: отменить операцию`

	msgAwaitingFront   = "📸 Отправьте фото экрана устройства."
	msgAwaitingBack    = "📸 Теперь отправьте фото задней крышки или /skip."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendCheck       = "📋 Отправьте /check, чтобы начать проверку."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Оцениваю состояние устройства..."
	msgBusy            = "⏳ Подождите, предыдущая проверка ещё идёт."
	msgNothingToSkip   = "⚠️ Сначала отправьте фото экрана."
	msgProcessingError = "⚠️ Не удалось обработать снимки. Попробуйте сделать другие фото."
	msgDecodeError     = "⚠️ Не удалось прочитать изображение. Отправьте фото в формате JPEG или PNG."
)

// Bot представляет Telegram-бота
type Bot struct {
	api     *tgbotapi.BotAPI
	users   *app.UserService
	capture *app.CaptureService
	logger  *logger.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, capture *app.CaptureService, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Discard()
	}
	log.Info("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:     api,
		users:   users,
		capture: capture,
		logger:  log,
	}, nil
}

// Run обрабатывает сообщения до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("Error getting user: %v", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.handlePhoto(ctx, msg, user, fileID)
		return
	}

	b.sendMessage(msg.Chat.ID, promptFor(user.State))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.users.Cancel(ctx, user.ID, chatID); err != nil {
			b.logger.Error("Error resetting user: %v", err)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.users.BeginCheck(ctx, user.ID, chatID); err != nil {
			b.logger.Error("Error starting check: %v", err)
			return
		}
		b.sendMessage(chatID, msgAwaitingFront)

	case "skip":
		if user.State != entity.StateAwaitingBackPhoto {
			b.sendMessage(chatID, msgNothingToSkip)
			return
		}
		b.sendMessage(chatID, msgProcessing)
		result, err := b.capture.Skip(ctx, user.ID, chatID)
		b.reply(chatID, result, err)

	case "cancel":
		if _, err := b.users.Cancel(ctx, user.ID, chatID); err != nil {
			b.logger.Error("Error cancelling check: %v", err)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto раскладывает снимок по ракурсу в зависимости от шага проверки
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	chatID := msg.Chat.ID

	switch user.State {
	case entity.StateAwaitingFrontPhoto, entity.StateAwaitingBackPhoto:
	case entity.StateProcessing:
		b.sendMessage(chatID, msgBusy)
		return
	default:
		b.sendMessage(chatID, msgSendCheck)
		return
	}

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	b.logger.Info("Received %s photo from %d: %d bytes", user.State, user.ID, len(imageData))

	if user.State == entity.StateAwaitingFrontPhoto {
		if _, err := b.capture.AcceptFrontPhoto(ctx, user.ID, chatID, imageData); err != nil {
			b.logger.Error("Error saving front photo: %v", err)
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingBack)
		return
	}

	b.sendMessage(chatID, msgProcessing)
	result, err := b.capture.AcceptBackPhoto(ctx, user.ID, chatID, imageData)
	b.reply(chatID, result, err)
}

// reply отправляет итог осмотра и снимки с разметкой
func (b *Bot) reply(chatID int64, result *entity.InspectionResult, err error) {
	if err != nil {
		b.logger.Warning("Inspection failed for chat %d: %v", chatID, err)
		if errors.Is(err, entity.ErrDecode) {
			b.sendMessage(chatID, msgDecodeError)
			return
		}
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, FormatResult(result))

	for _, view := range entity.InspectedViews {
		data, ok := result.Visualized[view]
		if !ok {
			continue
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: string(view) + ".jpg", Bytes: data})
		photo.Caption = viewCaption(view, len(result.Detections[view]))
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Error("Error sending photo: %v", err)
		}
	}
}

// FormatResult текст ответа с оценкой, состоянием зон и списком повреждений
func FormatResult(result *entity.InspectionResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Оценка: %s (баллы: %.1f)\n", gradeIcon(result.Grade), result.Grade, result.DamageScore)
	sb.WriteString(result.Report.OverallAssessment + "\n\n")
	sb.WriteString(result.Report.ScreenCondition + "\n")
	sb.WriteString(result.Report.BackCondition + "\n")
	sb.WriteString(result.Report.FrameCondition + "\n")

	if len(result.Damages) > 0 {
		sb.WriteString("\n🔍 Повреждения:\n")
		for i, d := range result.Damages {
			fmt.Fprintf(&sb, "%d. %s, %s (%s)\n", i+1, d.Type, d.Severity, d.Location)
		}
	}

	sb.WriteString("\n" + result.Report.Summary)
	return sb.String()
}

func gradeIcon(g entity.Grade) string {
	switch g {
	case entity.GradeS, entity.GradeA:
		return "✅"
	case entity.GradeB, entity.GradeC:
		return "⚠️"
	default:
		return "❌"
	}
}

func viewCaption(view entity.View, detections int) string {
	name := "Экран"
	if view == entity.ViewBack {
		name = "Задняя крышка"
	}
	if detections == 0 {
		return name + ": дефекты не обнаружены"
	}
	return fmt.Sprintf("%s: найдено %d", name, detections)
}

func promptFor(state entity.UserState) string {
	switch state {
	case entity.StateAwaitingFrontPhoto:
		return msgAwaitingFront
	case entity.StateAwaitingBackPhoto:
		return msgAwaitingBack
	case entity.StateProcessing:
		return msgBusy
	default:
		return msgSendCheck
	}
}

// imageFileID возвращает файл снимка: фото максимального размера или документ-изображение
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Error sending message: %v", err)
	}
}
