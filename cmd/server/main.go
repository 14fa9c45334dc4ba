package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chaussup/shop/internal/bootstrap"
	"github.com/chaussup/shop/internal/config"
	"github.com/chaussup/shop/internal/events"
	"github.com/chaussup/shop/internal/handlers"
	"github.com/chaussup/shop/internal/logging"
	"github.com/chaussup/shop/internal/session"
	httpserver "github.com/chaussup/shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("database initialization failed: %v", err)
	}

	if err := bootstrap.Run(db, logger, configuration.ADMIN_USERNAME, configuration.ADMIN_PASSWORD); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	prod := events.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))

	sessions := &session.Manager{
		DB:     db,
		Secret: []byte(configuration.SESSION_SECRET),
		TTL:    session.DefaultTTL,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		Sessions:       sessions,
		CatalogHandler: &handlers.CatalogHandler{DB: db},
		CartHandler:    &handlers.CartHandler{DB: db},
		AuthHandler:    &handlers.AuthHandler{DB: db, Sessions: sessions, Producer: prod},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
