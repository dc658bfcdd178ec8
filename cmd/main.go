package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"device-inspector/config"
	"device-inspector/internal/api/rest"
	"device-inspector/internal/api/telegram"
	"device-inspector/internal/container"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/infrastructure/notify"
	"device-inspector/internal/infrastructure/storage"
	"device-inspector/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogDirectory)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Модель грузится один раз и передаётся в сервисы явно
	model, err := container.NewModel(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to load detection model: %v", err)
	}
	defer model.Close()

	db, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	appLog.Info("Inspection history stored in %s", cfg.DatabasePath)

	hub := notify.NewHub(appLog)
	publishers := notify.MultiPublisher{hub}

	if cfg.SQSQueueURL != "" {
		awsCfg, err := container.LoadAWS(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		publishers = append(publishers, notify.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL))
		appLog.Info("Publishing inspections to SQS queue %s", cfg.SQSQueueURL)
	}

	appContainer, err := container.New(cfg, container.Deps{
		Model:       model,
		Users:       storage.NewMemoryUserRepository(),
		Inspections: storage.NewSQLiteInspectionRepository(db),
		Publisher:   port.ResultPublisher(publishers),
		Logger:      appLog,
	})
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.CaptureService, appLog)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			appLog.Info("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				appLog.Error("Bot error: %v", err)
			}
		}()
	} else {
		appLog.Warning("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	router := rest.NewRouter(appContainer.InspectionService, rest.RouterOptions{
		AllowOrigins:  cfg.AllowOrigins,
		MaxUploadSize: cfg.MaxUploadSize,
		HistoryLimit:  cfg.HistoryLimit,
		LiveFeed:      hub.ServeWS,
	}, appLog)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		appLog.Info("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown: %v", err)
	}

	wg.Wait()
	appLog.Info("Stopped")
}
