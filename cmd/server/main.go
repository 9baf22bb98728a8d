package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/config"
	"preventa/internal/credit"
	"preventa/internal/evaluation"
	"preventa/internal/infrastructure/logger"
	"preventa/internal/infrastructure/mysql"
	"preventa/internal/notification"
	"preventa/internal/notification/transport"
	"preventa/internal/order"
	"preventa/internal/pricing"
	"preventa/internal/product"
	"preventa/internal/server"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("PREVENTA_CONFIG", "config.yaml"), "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.Migrate {
		if err := mysql.Migrate(db); err != nil {
			zapLogger.Fatal("migrating database", zap.Error(err))
		}
		zapLogger.Info("database migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.NewDispatcher(cfg.Notification.QueueSize, zapLogger.Named("notification"))
	bus := notification.NewBus(dispatcher, cfg.Notification.Topic, zapLogger.Named("bus"))
	if err := bus.Start(ctx); err != nil {
		zapLogger.Fatal("starting event bus", zap.Error(err))
	}

	pricingModule := pricing.NewModule(db, cfg, zapLogger)
	productModule := product.NewModule(db, zapLogger)
	creditModule := credit.NewModule(db, cfg, zapLogger)
	orderModule := order.NewModule(db, cfg, zapLogger, pricingModule.Resolver, productModule.Repository, bus)
	evaluationModule := evaluation.NewModule(db, cfg, zapLogger, creditModule.Ledger, bus)

	router := server.NewRouter(server.Handlers{
		Orders:        orderModule.Controller,
		Evaluations:   evaluationModule.Controller,
		Pricing:       pricingModule.Controller,
		Credit:        creditModule.Controller,
		Products:      productModule.Controller,
		Notifications: transport.NewHandler(dispatcher, cfg.Notification.WriteTimeout, zapLogger.Named("ws")),
		Stats:         dispatcher,
	}, auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)
	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
	}

	if err := bus.Close(); err != nil {
		zapLogger.Error("closing event bus", zap.Error(err))
	}
	if err := dispatcher.Close(); err != nil {
		zapLogger.Error("closing notification sessions", zap.Error(err))
	}

	zapLogger.Info("shutdown complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
