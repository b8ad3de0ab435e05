package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/broker"
	"github.com/yeremiapane/table-order/config"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/kds"
	"github.com/yeremiapane/table-order/router"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}

	hub := kds.NewHub()
	publishers := []services.EventPublisher{hub}

	if cfg.RabbitMQURL != "" {
		rabbit, err := broker.NewRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			utils.ErrorLogger.Errorf("RabbitMQ disabled: %v", err)
		} else {
			defer rabbit.Close()
			publishers = append(publishers, rabbit)
			utils.InfoLogger.Println("Publishing order events to RabbitMQ")
		}
	}

	relay := services.NewOutboxRelay(db, cfg.OutboxInterval, publishers...)
	relay.Retention = cfg.OutboxRetention

	r := router.SetupRouter(db, cfg, hub)
	r.SetTrustedProxies([]string{"127.0.0.1"})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		relay.Start()
		<-gctx.Done()
		relay.Stop()

		utils.InfoLogger.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
}
