package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketbase/catalog-api/internal/api/handler"
	"github.com/marketbase/catalog-api/internal/api/middleware"
	"github.com/marketbase/catalog-api/internal/core/domain"
	"github.com/marketbase/catalog-api/internal/core/service"
	mongodb "github.com/marketbase/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/marketbase/catalog-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("catalog"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	categoryRepo := mongodb.NewCategoryRepository(db)
	productCache := redisdb.NewProductCache(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	productService := service.NewProductService(productRepo, categoryRepo, productCache, log)
	categoryService := service.NewCategoryService(categoryRepo, log)
	userService := service.NewUserService(userRepo, productRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	userHandler := handler.NewUserHandler(userService)

	authRequired := middleware.Auth(jwtSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Product routes (all authenticated) ---
	products := e.Group("/api/products", authRequired)
	products.POST("", productHandler.Create)
	products.GET("", productHandler.FindAll, adminOnly)
	products.GET("/paginated", productHandler.FindAllPaginated)
	products.GET("/slice", productHandler.FindAllSlice)
	products.GET("/search", productHandler.Search)
	products.GET("/user/:userId", productHandler.SearchByUser)
	products.GET("/category/:categoryId", productHandler.FindByCategory)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	// --- Category routes ---
	categories := e.Group("/api/categories", authRequired)
	categories.POST("", categoryHandler.Create)
	categories.GET("", categoryHandler.FindAll)
	categories.GET("/:id", categoryHandler.Get)

	// --- User administration ---
	users := e.Group("/api/users", authRequired, adminOnly)
	users.DELETE("/:id", userHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
