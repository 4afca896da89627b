package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/dispatcher"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/service"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/config"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/jobcode"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/donghwunline/wellkorea-erp-sub009/internal/interfaces/http"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/lock"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/worker"
	"github.com/donghwunline/wellkorea-erp-sub009/pkg/database"
	"github.com/donghwunline/wellkorea-erp-sub009/pkg/logging"
)

func main() {
	// Optional .env for local development; real environment wins when set.
	_ = gotenv.Load()

	configPath := "configs/config.yaml"
	if v := os.Getenv("ERP_CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting WellKorea ERP order workflow server",
		zap.Int("port", cfg.Server.Port))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()

	if err := database.NewMigrator(sqlDB, logger).Run(cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	db := sqlite.NewDB(sqlDB, logger)

	projects := sqlite.NewProjectRepository(db, logger)
	quotations := sqlite.NewQuotationRepository(db, logger)
	deliveries := sqlite.NewDeliveryRepository(db, logger)
	requests := sqlite.NewPurchaseRequestRepository(db, logger)
	rfqItems := sqlite.NewRfqItemRepository(db, logger)
	orders := sqlite.NewPurchaseOrderRepository(db, logger)
	sequences := sqlite.NewSequenceRepository(db, logger)
	lockStore := sqlite.NewLockRepository(db, logger)

	locks := lock.NewServiceWithOptions(lockStore, logger, lock.Options{
		AcquireTimeout: cfg.Lock.AcquireTimeout,
		TTL:            cfg.Lock.TTL,
	})
	codes := jobcode.NewGenerator(sequences)

	events := dispatcher.New(logger)

	projectService := service.NewProjectService(projects, codes, db, logger)
	quotationService := service.NewQuotationService(quotations, projects, events, locks, db, logger)
	deliveryService := service.NewDeliveryService(deliveries, quotations, locks, db, logger)
	requestService := service.NewPurchaseRequestService(requests, rfqItems, projects, locks, db, logger)
	rfqItemService := service.NewRfqItemService(rfqItems, db, logger)
	orderService := service.NewPurchaseOrderService(orders, requests, rfqItems, locks, db, events, logger)

	propagation := service.NewPropagation(projectService, quotationService, requestService, rfqItemService, logger)
	propagation.Register(events)

	workers := worker.NewManager(logger)
	workers.Register(worker.NewRfqDeadlineWorker(
		rfqItemService,
		cfg.Worker.RfqDeadlineInterval,
		cfg.Worker.RfqDeadlineBatchSize,
		logger,
	))
	workers.Register(worker.NewLeaseJanitor(lockStore, cfg.Worker.LeaseJanitorInterval, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer workers.StopAll()

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, httpserver.Services{
		Projects:         projectService,
		Quotations:       quotationService,
		Deliveries:       deliveryService,
		PurchaseRequests: requestService,
		RfqItems:         rfqItemService,
		PurchaseOrders:   orderService,
	}, logger)

	// Blocks until the context is canceled or the listener fails; the
	// shutdown path inside Start drains in-flight requests.
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
