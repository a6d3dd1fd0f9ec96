package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	catalogmemory "github.com/shopkit/go-shop-api-server/internal/domains/catalog/adapters/memory"
	cataloghttp "github.com/shopkit/go-shop-api-server/internal/domains/catalog/adapters/http"
	catalogpostgres "github.com/shopkit/go-shop-api-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/shopkit/go-shop-api-server/internal/domains/catalog/application"
	catalogports "github.com/shopkit/go-shop-api-server/internal/domains/catalog/ports"

	customershttp "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/http"
	customersmemory "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/memory"
	customersobs "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/observability"
	customerspostgres "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/persistence/postgres"
	customersapp "github.com/shopkit/go-shop-api-server/internal/domains/customers/application"
	customersports "github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"

	"github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/giftwrap"
	ordershttp "github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/http"
	ordersmemory "github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/shopkit/go-shop-api-server/internal/domains/orders/application"
	ordersports "github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"

	"github.com/shopkit/go-shop-api-server/internal/auth"
	"github.com/shopkit/go-shop-api-server/internal/events"
	eventskafka "github.com/shopkit/go-shop-api-server/internal/events/kafka"
	"github.com/shopkit/go-shop-api-server/internal/filestore"
	"github.com/shopkit/go-shop-api-server/internal/platform/migrations"
	platformobservability "github.com/shopkit/go-shop-api-server/internal/platform/observability"
	platformpostgres "github.com/shopkit/go-shop-api-server/internal/platform/postgres"
)

const serviceName = "shop-api"

// Run boots the shop HTTP API with observability, repositories, the
// asynchronous attachment store, and event publishing wired.
func Run(ctx context.Context) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	db, cleanupDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	bus := buildPublisher(cfg, logger)
	if closer, ok := bus.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	blobs := filestore.NewWorker(filestore.NewDiskStore(cfg.FileStoreDir), cfg.FileQueueSize, logger)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go blobs.Run(workerCtx)

	customerRepo, orderRepo, articleRepo := buildRepositories(db, logger)

	coreCustomers := customersapp.NewService(customerRepo, auth.NewEncoder(cfg.PasswordSalt), blobs, bus)
	customerService := customersobs.New(
		coreCustomers,
		customersobs.WithLogger(logger),
		customersobs.WithTracer(instruments.Tracer("internal.customers.application")),
		customersobs.WithMeter(instruments.Meter("internal.customers.application")),
	)

	var orderService ordersports.Service = ordersapp.NewService(orderRepo, customerService, bus)
	if cfg.GiftWrap {
		orderService = giftwrap.New(orderService, giftwrap.WithLogger(logger))
		logger.Info("gift-wrap decoration enabled")
	}

	articleService := catalogapp.NewService(articleRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	v1 := router.Group("/api/v1")
	customershttp.NewHandler(customerService).Register(v1)
	ordershttp.NewHandler(orderService).Register(v1)
	cataloghttp.NewHandler(articleService).Register(v1)

	addr := ":" + cfg.Port
	logger.Info("shop API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("shop API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildRepositories picks postgres-backed adapters when a connection exists
// and falls back to the linked in-memory set otherwise.
func buildRepositories(db *gorm.DB, logger *slog.Logger) (customersports.Repository, ordersports.Repository, catalogports.Repository) {
	if db != nil {
		logger.Info("repositories configured with postgres")
		return customerspostgres.NewRepository(db), orderspostgres.NewRepository(db), catalogpostgres.NewRepository(db)
	}
	customerRepo := customersmemory.NewRepository()
	orderRepo := ordersmemory.NewRepository()
	articleRepo := catalogmemory.NewRepository()
	customerRepo.BindOrders(orderRepo)
	articleRepo.BindSales(orderRepo)
	return customerRepo, orderRepo, articleRepo
}

func buildPublisher(cfg Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, domain events stay in-process")
		return events.NoopPublisher{}
	}
	publisher, err := eventskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Warn("failed to connect to kafka, domain events stay in-process", slog.String("error", err.Error()))
		return events.NoopPublisher{}
	}
	logger.Info("kafka event publishing enabled", slog.String("topic", cfg.KafkaTopic))
	return publisher
}
