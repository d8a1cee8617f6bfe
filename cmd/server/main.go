package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/auth"
	"github.com/ukydev/aivodrive/internal/config"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/logging"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/notify"
	"github.com/ukydev/aivodrive/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Environment, os.Stdout)
	if cfg.IsProduction() && cfg.JWTSecret == auth.DefaultSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	database := client.Database(cfg.MongoDB)

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.MQTTBroker != "" {
		clientID := cfg.MQTTClientID
		if clientID == "" {
			clientID = "aivodrive-api"
		}
		mc, err := notify.Connect(cfg.MQTTBroker, clientID)
		if err != nil {
			log.WithError(err).Warn("MQTT unavailable, alerts will not be pushed")
		} else {
			p := notify.NewMQTTPublisher(mc, cfg.MQTTTopic)
			defer p.Close()
			publisher = p
			log.WithFields(log.Fields{"broker": cfg.MQTTBroker, "topic": cfg.MQTTTopic}).Info("Publishing alerts over MQTT")
		}
	}

	handler := server.NewRouter(server.Deps{
		Auth:         auth.NewService(cfg.JWTSecret, cfg.JWTExpiry),
		Users:        &db.MongoUserCollection{Collection: database.Collection("users")},
		Vehicles:     db.NewMongoStore[models.Vehicle](database, "vehicles"),
		Drivers:      db.NewMongoStore[models.Driver](database, "drivers"),
		Trips:        db.NewMongoStore[models.Trip](database, "trips"),
		Maintenance:  db.NewMongoStore[models.Maintenance](database, "maintenance"),
		Alerts:       db.NewMongoAlertCollection(database),
		Publisher:    publisher,
		Ping:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPM: cfg.RateLimitRPM,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
