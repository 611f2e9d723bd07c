package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"minimart/internal/auth"
	"minimart/internal/cache"
	"minimart/internal/config"
	"minimart/internal/db"
	"minimart/internal/handler"
	"minimart/internal/model"
	"minimart/internal/repository"
	"minimart/internal/router"
	"minimart/internal/service"
)

// @title Minimart API
// @version 1.0
// @description Small commerce backend with JWT authentication, role-based access and purchase transactions.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Token{},
		&model.Product{},
		&model.Purchase{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewTokenRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	purchaseRepo := repository.NewPurchaseRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenLedger := auth.NewTokenLedger(tokenRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenLedger)
	userService := service.NewUserService(userRepo, tokenRepo, cacheClient)
	productService := service.NewProductService(productRepo, cacheClient)
	purchaseService := service.NewPurchaseService(txManager, purchaseRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)

	// Register routes
	router.Register(
		e,
		jwtService,
		tokenLedger,
		authHandler,
		userHandler,
		productHandler,
		purchaseHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
