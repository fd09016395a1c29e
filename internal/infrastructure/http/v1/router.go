// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"prodsupply/internal/infrastructure/http/v1/handlers"
	"prodsupply/internal/infrastructure/http/v1/middleware"
	"prodsupply/pkg/logger"
)

// RouterConfig carries the handlers and middleware dependencies.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Sales       *handlers.SaleHandler
	Productions *handlers.ProductionHandler
	CostPlans   *handlers.CostPlanHandler
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Trace())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.ErrorHandler())

	health := r.Group("/health")
	{
		health.GET("/live", cfg.Health.Live)
		health.GET("/ready", cfg.Health.Ready)
		health.GET("/info", cfg.Health.Info)
	}

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/register", cfg.Auth.Register)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	{
		sales := protected.Group("/sales")
		{
			sales.POST("", cfg.Sales.Create)
			sales.GET("", cfg.Sales.List)
			sales.GET("/:id", cfg.Sales.Get)
			sales.POST("/:id/quote", cfg.Sales.Quote)
			sales.POST("/:id/confirm", cfg.Sales.Confirm)
			sales.POST("/:id/process", cfg.Sales.Process)
			sales.POST("/:id/copy", cfg.Sales.Copy)
			sales.GET("/:id/productions", cfg.Sales.Productions)
			sales.POST("/:id/lines/:lineId/change-quantity", cfg.Sales.ChangeLineQuantity)
			sales.GET("/:id/lines/:lineId/minimal-quantity", cfg.Sales.MinimalLineQuantity)
		}

		productions := protected.Group("/productions")
		{
			productions.GET("", cfg.Productions.List)
			productions.GET("/:id", cfg.Productions.Get)
			productions.POST("/:id/change-quantity", cfg.Productions.ChangeQuantity)
			productions.POST("/delete", cfg.Productions.Delete)
		}

		costPlans := protected.Group("/cost-plans")
		{
			costPlans.POST("", cfg.CostPlans.Create)
			costPlans.GET("/:id", cfg.CostPlans.Get)
			costPlans.DELETE("/:id", cfg.CostPlans.Delete)
		}

		protected.POST("/warnings/acknowledge", cfg.Sales.AcknowledgeWarning)
	}

	return r
}
