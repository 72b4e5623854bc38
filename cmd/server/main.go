package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/newsletter/internal/api"
	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/email"
	"github.com/ignite/newsletter/internal/store"
	"github.com/ignite/newsletter/internal/subscription"
	"github.com/ignite/newsletter/internal/token"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}
	log.Println("Connected to database")

	sender, err := domain.ParseSubscriberEmail(cfg.Email.Sender)
	if err != nil {
		log.Fatalf("Invalid sender address %q: %v", cfg.Email.Sender, err)
	}

	templates, err := email.NewTemplates()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}

	svc := subscription.New(
		store.New(db, cfg.Database.AcquireTimeout()),
		email.NewClient(cfg.Email, sender),
		templates,
		token.NewGenerator(),
		cfg.App.BaseURL,
	)
	server := api.NewServer(svc)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
