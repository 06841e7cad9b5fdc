package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/config"
	"github.com/aquaexport/seatrace/internal/repository/mongodb"
	"github.com/aquaexport/seatrace/internal/repository/sheets"
	"github.com/aquaexport/seatrace/internal/scheduler"
	"github.com/aquaexport/seatrace/internal/server/handlers"
	"github.com/aquaexport/seatrace/internal/server/router"
	ledgersvc "github.com/aquaexport/seatrace/internal/service/ledger"
	reconcilesvc "github.com/aquaexport/seatrace/internal/service/reconcile"
	shipmentsvc "github.com/aquaexport/seatrace/internal/service/shipment"
	"github.com/aquaexport/seatrace/pkg/clients/exportapi"
	"github.com/aquaexport/seatrace/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Sheets export is optional; the sweep stores findings in Mongo either way.
	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets report export enabled")
	} else {
		baseLogger.Warn("sheets export not configured, reconciliation reports stay in mongodb")
	}

	apiClient := exportapi.NewClient(cfg.Backend)
	if err := apiClient.Healthy(context.Background()); err != nil {
		baseLogger.Warn("export backend not reachable at startup", zap.Error(err))
	}

	quantityLedger := ledgersvc.New(apiClient, baseLogger.Named("svc.ledger"))
	scanner := reconcilesvc.NewScanner(apiClient, baseLogger.Named("svc.reconcile"))
	sessionCache := shipmentsvc.NewSessionCache()
	orchestrator := shipmentsvc.NewService(apiClient, quantityLedger, scanner, sessionCache, baseLogger.Named("svc.shipment"))

	shipmentHandler := handlers.NewShipmentHandler(orchestrator, mongoRepo, baseLogger.Named("handlers.shipment"))
	labHandler := handlers.NewLabHandler(orchestrator, baseLogger.Named("handlers.lab"))
	engine := router.New(shipmentHandler, labHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reconcile, scanner, sessionCache, mongoRepo, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
