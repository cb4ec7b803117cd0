package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantquery/plantquery/internal/logging"
	"github.com/plantquery/plantquery/internal/stubserver"
)

func main() {
	// Parse flags
	addr := flag.String("addr", ":8000", "Listen address")
	aiAvailable := flag.Bool("ai-available", false, "Report AI as configured in /health")
	sessionTTL := flag.Duration("session-ttl", 24*time.Hour, "Server-side session lifetime")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := logging.Must(logging.Config{Level: *logLevel})
	defer func() { _ = logger.Sync() }()

	srv := stubserver.New(stubserver.Options{
		AIAvailable: *aiAvailable,
		SessionTTL:  *sessionTTL,
		Logger:      logger,
	})

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(*addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down")
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
