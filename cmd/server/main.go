package main

import (
	"log"
	"net/http"

	_ "accesshub/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"accesshub/internal/auth"
	"accesshub/internal/cache"
	"accesshub/internal/config"
	"accesshub/internal/db"
	"accesshub/internal/handler"
	"accesshub/internal/model"
	"accesshub/internal/repository"
	"accesshub/internal/router"
	"accesshub/internal/service"
)

// @title AccessHub API
// @version 1.0
// @description Role-based access control API with JWT authentication and user management.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	router.Register(e, cfg, jwtService, authHandler, userHandler)

	addr := ":" + cfg.ServerPort
	log.Printf("server listening on %s", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
