package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buy01/marketplace-system/internal/api/handler"
	"github.com/buy01/marketplace-system/internal/api/middleware"
	"github.com/buy01/marketplace-system/internal/core/auth"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// Services bundles the use-case implementations the router exposes.
type Services struct {
	Users    ports.UserService
	Products ports.ProductService
	Media    ports.MediaService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, authority *auth.Authority, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	authMiddleware := middleware.Auth(authority)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(svc.Users)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- User routes ---
	userHandler := handler.NewUserHandler(svc.Users)
	users := e.Group("/v1/users", authMiddleware)
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)
	users.GET("/:id", userHandler.GetByID)

	// --- Product routes ---
	productHandler := handler.NewProductHandler(svc.Products)
	products := e.Group("/v1/products", authMiddleware)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, middleware.RequireRole(domain.RoleSeller))
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	// --- Media routes ---
	mediaHandler := handler.NewMediaHandler(svc.Media)
	media := e.Group("/v1/media", authMiddleware)
	media.GET("", mediaHandler.ListMine)
	media.POST("", mediaHandler.Upload)
	media.PUT("/:id/product/:productId", mediaHandler.Associate)
	media.DELETE("/:id", mediaHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
