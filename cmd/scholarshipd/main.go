package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/infra/config"
	idb "scholarship_admin/internal/infra/database"
	"scholarship_admin/internal/infra/events"
	"scholarship_admin/internal/infra/logger"
	"scholarship_admin/internal/infra/memory"
	"scholarship_admin/internal/infra/metrics"
	"scholarship_admin/internal/infra/scheduler"
	"scholarship_admin/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"storage":     cfg.StorageDriver,
		"environment": cfg.Environment,
		"staff":       len(cfg.StaffTelegramIDs),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	var store app.TxStore
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := idb.Migrate(ctx, db); err != nil {
				mainLogger.Fatalf("Could not apply schema: %v", err)
			}
			mainLogger.Info("Database schema is up to date.")
		}
		store = idb.NewPostgresStore(db)
	default:
		mainLogger.Warn("Using in-memory storage; data is lost on restart.")
		store = memory.New()
	}

	// Event sinks
	recorder := metrics.NewRecorder()
	publishers := app.Publishers{recorder}

	if cfg.RedisURL != "" {
		rdb, err := events.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to Redis: %v", err)
		}
		defer rdb.Close()
		publishers = append(publishers, events.NewRedisPublisher(rdb, events.DefaultChannel))
		mainLogger.Info("Publishing lifecycle events to Redis.")
	}

	var bot *telebot.Bot
	staff := telegram.NewStaff(cfg.StaffTelegramIDs...)
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID, "text": c.Text()})
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.Fatalf("Could not create Telegram bot: %v", err)
		}
		publishers = append(publishers, telegram.NewStaffNotifier(
			telegram.NewTelebotAdapter(bot), staff, cfg.ManagerTelegramID, logger.Component("staff_notifier"),
		))
	}

	// Services
	cycleService := app.NewCycleService(store, publishers, logger.Component("cycle_service"), cfg.DefaultScholarshipType)
	applicationService := app.NewApplicationService(store, publishers, logger.Component("application_service"))

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		mainLogger.WithField("addr", cfg.MetricsAddr).Info("Serving metrics")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("Metrics server stopped")
		}
	}()

	// Staff bot and scheduled digests
	var digestScheduler *scheduler.DigestScheduler
	if bot != nil {
		handlerLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, staff, handlerLogger)
		telegram.RegisterStaffHandlers(ctx, bot, cycleService, applicationService, staff, handlerLogger)
		telegram.RegisterReviewCallbacks(ctx, bot, applicationService, staff, handlerLogger)
		mainLogger.Info("Telegram handlers registered.")

		if cfg.ManagerTelegramID != 0 {
			digests := app.NewDigestService(store, telegram.NewTelebotAdapter(bot), cfg.ManagerTelegramID, logger.Component("digest_service"))
			digestScheduler = scheduler.NewDigestScheduler(
				digests,
				recorder,
				logger.Component("scheduler"),
				cfg.CronSpecDeadlineDigest,
				cfg.CronSpecReviewBacklog,
				time.Duration(cfg.DigestHorizonDays)*24*time.Hour,
				time.Duration(cfg.ReviewBacklogDays)*24*time.Hour,
			)
			if err := digestScheduler.Start(); err != nil {
				mainLogger.Fatalf("Could not start scheduler: %v", err)
			}
		} else {
			mainLogger.Info("MANAGER_TELEGRAM_ID not set, digests disabled.")
		}

		go bot.Start()
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, staff bot disabled.")
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	if digestScheduler != nil {
		digestScheduler.Stop()
	}
	if bot != nil {
		bot.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("Metrics server shutdown failed")
	}
	mainLogger.Info("Application shut down gracefully.")
}
