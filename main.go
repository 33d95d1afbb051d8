package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/xddprog/auth-backend/internal/cache"
	"github.com/xddprog/auth-backend/internal/client"
	"github.com/xddprog/auth-backend/internal/config"
	"github.com/xddprog/auth-backend/internal/db"
	"github.com/xddprog/auth-backend/internal/handler"
	"github.com/xddprog/auth-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	redisCache, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisCache.Close()

	// The cache holds nothing that should survive a restart.
	if err := redisCache.Reset(ctx); err != nil {
		log.Fatalf("redis flush: %v", err)
	}

	repo := &db.Postgres{Pool: pool}

	authService, err := service.NewAuthService(repo, cfg.JWT, cfg.Cookie)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	userService := service.NewUserService(repo)

	vkClient := client.NewVKClient(cfg.VK)
	yandexClient := client.NewYandexClient(cfg.Yandex)

	router := gin.Default()
	router.Use(handler.RequestIDMiddleware())

	allowCredentials, err := strconv.ParseBool(cfg.CORS.AllowCredentials)
	if err != nil {
		log.Fatalf("invalid CORS_ALLOW_CREDENTIALS: %v", err)
	}
	router.Use(handler.CORSMiddleware(strings.Split(cfg.CORS.Origins, ","), allowCredentials))

	authHandler := handler.NewAuthHandler(authService, vkClient, yandexClient)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(pool, redisCache)

	router.GET("/ping", handler.Ping)
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/refresh", authHandler.Refresh)
	router.DELETE("/logout", authHandler.Logout)
	router.POST("/vk", authHandler.LoginVK)
	router.POST("/yandex", authHandler.LoginYandex)

	protected := router.Group("/", handler.AuthMiddleware(authService))
	protected.GET("/current_user", authHandler.CurrentUser)
	protected.GET("/users/:id", userHandler.GetUser)
	protected.POST("/users/batch", userHandler.BatchUsers)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
