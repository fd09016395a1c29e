// Command server runs the production supply HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"prodsupply/internal/domain/auth"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
	"prodsupply/internal/domain/supply"
	v1 "prodsupply/internal/infrastructure/http/v1"
	"prodsupply/internal/infrastructure/http/v1/handlers"
	"prodsupply/internal/infrastructure/storage/postgres"
	"prodsupply/internal/infrastructure/storage/postgres/auth_repo"
	"prodsupply/internal/infrastructure/storage/postgres/catalog_repo"
	"prodsupply/internal/infrastructure/storage/postgres/document_repo"
	"prodsupply/pkg/logger"
)

var version = "dev"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnvBool("LOG_DEV", false),
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !getEnvBool("LOG_DEV", false) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_DSN")))
	if err != nil {
		return err
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// Catalogs.
	units := catalog_repo.NewUnitRepo(txManager)
	products := catalog_repo.NewProductRepo(txManager)
	warehouses := catalog_repo.NewWarehouseRepo(txManager)
	boms := catalog_repo.NewBOMRepo(txManager)
	routes := catalog_repo.NewRouteRepo(txManager)

	// Documents.
	saleRepo := document_repo.NewSaleRepo(txManager)
	productionRepo := document_repo.NewProductionRepo(txManager)
	costPlanRepo := document_repo.NewCostPlanRepo(txManager)

	// Domain services.
	converter := uom.NewConverter(units)
	calculator := bom.NewCalculator(units)
	walker := costplan.NewWalker(boms, calculator)
	materializer := production.NewMaterializer(products, boms, routes, calculator)

	warnings := postgres.NewWarningStore(txManager)
	saleService := sales.NewService(saleRepo, warnings, txManager)

	auditTrail, err := postgres.NewSupplyAuditTrail(txManager)
	if err != nil {
		return err
	}

	supplyService := supply.NewService(
		saleRepo, productionRepo, costPlanRepo,
		products, warehouses, units,
		walker, materializer, converter,
		txManager, auditTrail,
		supply.Config{
			SupplyProductionDefault: getEnvBool("SUPPLY_PRODUCTION_DEFAULT", false),
			CostPlanRequired:        getEnvBool("COST_PLAN_REQUIRED", false),
		},
	)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(auth_repo.NewUserRepo(txManager), jwtService, auth.DefaultServiceConfig())

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,

		Health:      handlers.NewHealthHandler(pool.Pool, version),
		Auth:        handlers.NewAuthHandler(authService),
		Sales:       handlers.NewSaleHandler(saleService, supplyService, products),
		Productions: handlers.NewProductionHandler(productionRepo, supplyService),
		CostPlans:   handlers.NewCostPlanHandler(costPlanRepo, txManager),
	})

	srv := &http.Server{
		Addr:              getEnv("HTTP_ADDR", ":8080"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server started", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic("missing required environment variable: " + key)
	}
	return v
}
