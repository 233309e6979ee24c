package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	addresshandler "ecommerce-platform/backend/internal/address/handler"
	addressrepo "ecommerce-platform/backend/internal/address/repository"
	addressservice "ecommerce-platform/backend/internal/address/service"
	authhandler "ecommerce-platform/backend/internal/auth/handler"
	authservice "ecommerce-platform/backend/internal/auth/service"
	carthandler "ecommerce-platform/backend/internal/cart/handler"
	cartrepo "ecommerce-platform/backend/internal/cart/repository"
	cartservice "ecommerce-platform/backend/internal/cart/service"
	categoryhandler "ecommerce-platform/backend/internal/category/handler"
	categoryrepo "ecommerce-platform/backend/internal/category/repository"
	categoryservice "ecommerce-platform/backend/internal/category/service"
	"ecommerce-platform/backend/internal/config"
	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/email"
	"ecommerce-platform/backend/internal/events"
	orderhandler "ecommerce-platform/backend/internal/order/handler"
	orderrepo "ecommerce-platform/backend/internal/order/repository"
	orderservice "ecommerce-platform/backend/internal/order/service"
	producthandler "ecommerce-platform/backend/internal/product/handler"
	productrepo "ecommerce-platform/backend/internal/product/repository"
	productservice "ecommerce-platform/backend/internal/product/service"
	reviewhandler "ecommerce-platform/backend/internal/review/handler"
	reviewrepo "ecommerce-platform/backend/internal/review/repository"
	reviewservice "ecommerce-platform/backend/internal/review/service"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/server"
	"ecommerce-platform/backend/internal/telemetry"
	userhandler "ecommerce-platform/backend/internal/user/handler"
	userrepo "ecommerce-platform/backend/internal/user/repository"
	userservice "ecommerce-platform/backend/internal/user/service"
)

const serviceName = "ecommerce-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	if cfg.Env == "production" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx := context.Background()

	providers, err := telemetry.NewProviders(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	var emitter events.Emitter
	if kafkaEmitter, err := events.NewKafkaEmitter(cfg.EventsKafkaBrokersList(), cfg.EventsKafkaTopic); err != nil {
		log.Fatalf("kafka: %v", err)
	} else if kafkaEmitter != nil {
		emitter = kafkaEmitter
		defer kafkaEmitter.Close()
	}

	users := userrepo.NewPostgresRepository(database)
	categories := categoryrepo.NewPostgresRepository(database)
	products := productrepo.NewPostgresRepository(database)
	carts := cartrepo.NewPostgresRepository(database)
	addresses := addressrepo.NewPostgresRepository(database)
	orders := orderrepo.NewPostgresRepository(database)
	reviews := reviewrepo.NewPostgresRepository(database)

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience,
		cfg.AccessTTL(), cfg.RefreshTTL())
	mail := email.LogSender{}

	userSvc := userservice.NewService(users, hasher, mail, emitter, cfg.LockoutThreshold)
	authSvc := authservice.NewService(userSvc, hasher, tokens, mail)
	categorySvc := categoryservice.NewService(categories)
	productSvc := productservice.NewService(products, categories, cfg.DefaultMinStockLevel)
	cartSvc := cartservice.NewService(carts, products)
	addressSvc := addressservice.NewService(addresses, users)
	orderSvc := orderservice.NewService(database, orders, carts, products, addresses, users, mail, emitter)
	reviewSvc := reviewservice.NewService(reviews, products, orders)

	router := server.New(server.Deps{
		Tokens:      tokens,
		Auth:        authhandler.NewHandler(authSvc),
		Users:       userhandler.NewHandler(userSvc),
		Categories:  categoryhandler.NewHandler(categorySvc),
		Products:    producthandler.NewHandler(productSvc),
		Carts:       carthandler.NewHandler(cartSvc),
		Addresses:   addresshandler.NewHandler(addressSvc),
		Orders:      orderhandler.NewHandler(orderSvc),
		Reviews:     reviewhandler.NewHandler(reviewSvc),
		DB:          database,
		ServiceName: serviceName,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
