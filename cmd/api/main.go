// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/api/handlers"
	"motohub-api-server/internal/api/routes"
	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/broker"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/jobs"
	"motohub-api-server/internal/logger"
	"motohub-api-server/internal/notify"
	"motohub-api-server/internal/s3"
	"motohub-api-server/internal/service"
	"motohub-api-server/internal/socket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logg := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to MongoDB and prepare collections
	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logg.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		logg.WithError(err).Fatal("Failed to create indexes")
	}

	users := database.NewUserRepository(db)
	parts := database.NewPartRepository(db)
	requests := database.NewPartRequestRepository(db)
	promotions := database.NewPromotionRepository(db)
	cars := database.NewCarRepository(db)
	reports := database.NewServiceReportRepository(db)
	logs := database.NewActivityLogRepository(db)

	// 3. Seed the first admin account
	tokens := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL())
	if err := database.SeedAdmin(ctx, users, tokens, cfg.Auth, logg); err != nil {
		logg.WithError(err).Fatal("Failed to seed admin user")
	}

	// 4. Optional integrations: S3 for part images, MQTT for event fan-out
	var uploader handlers.ImageUploader
	if cfg.S3.Enabled() {
		u, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			logg.WithError(err).Fatal("Failed to create S3 uploader")
		}
		uploader = u
	} else {
		logg.Warn("S3 is not configured; image uploads are disabled")
	}

	var publisher notify.Publisher
	if cfg.MQTT.Broker != "" {
		p, err := broker.NewMQTTPublisher(cfg.MQTT, logg)
		if err != nil {
			logg.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		defer p.Close()
		publisher = p
	}

	// 5. Realtime notifications and activity logging
	hub := socket.NewHub(logg)
	notifier := notify.New(hub, publisher, logg)
	recorder := activity.NewRecorder(logs, logg)

	requestService := service.NewRequestService(requests, parts, notifier, recorder, logg)
	reportService := service.NewReportService(reports, cars, parts, recorder)

	// 6. Handlers and router
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	h := routes.Handlers{
		Auth:           &handlers.AuthHandler{Users: users, Auth: tokens, Recorder: recorder, UsernameDomain: cfg.Auth.UsernameDomain, Logger: logg},
		Users:          &handlers.UserHandler{Users: users, Auth: tokens, Recorder: recorder, UsernameDomain: cfg.Auth.UsernameDomain, Logger: logg},
		Inventory:      &handlers.InventoryHandler{Parts: parts, Uploader: uploader, Notifier: notifier, Recorder: recorder, Logger: logg},
		Requests:       &handlers.RequestHandler{Requests: requests, Workflow: requestService, Logger: logg},
		Promotions:     &handlers.PromotionHandler{Promotions: promotions, Recorder: recorder, Logger: logg},
		Cars:           &handlers.CarHandler{Cars: cars, Recorder: recorder, Logger: logg},
		ServiceHistory: &handlers.ServiceHistoryHandler{Reports: reports, Creator: reportService, Logger: logg},
		Logs:           &handlers.LogHandler{Logs: logs, Logger: logg},
		Dashboard: &handlers.DashboardHandler{
			Users:      users,
			Parts:      parts,
			Requests:   requests,
			Promotions: promotions,
			Logs:       logs,
			Logger:     logg,
		},
		WebSocket: &handlers.WebSocketHandler{Hub: hub, Auth: tokens, Users: users, Logger: logg},
	}
	router := routes.SetupRouter(cfg, logg, tokens, users, h)

	// 7. Scheduled jobs
	scheduler := jobs.NewScheduler(promotions, parts, notifier, logg)
	if err := scheduler.Start(cfg.Jobs); err != nil {
		logg.WithError(err).Fatal("Failed to start cron jobs")
	}
	defer scheduler.Stop()

	// 8. Start server and wait for a signal
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	go func() {
		logg.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.WithError(err).Fatal("Failed to run server")
		}
	}()

	<-ctx.Done()
	logg.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.WithError(err).Error("Graceful shutdown failed")
	}
}
