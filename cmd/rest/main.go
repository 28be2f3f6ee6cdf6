package main

import (
	"context"
	"log"
	"time"

	"realtime-chat-be/internal/bootstrap"
	"realtime-chat-be/internal/config"
	"realtime-chat-be/internal/server"
	"realtime-chat-be/internal/tracer"
	"realtime-chat-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	if cfg.App.TracingEnabled {
		shutdownTracer := tracer.InitTracer(cfg.App.OtlpEndpoint)
		defer shutdownTracer(context.Background())
	}

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	go runSessionCleanup(container, cfg.Chat.SessionMaxIdle, cfg.Chat.CleanupInterval)

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}

// runSessionCleanup periodically evicts sessions whose connection went quiet
// without a clean close.
func runSessionCleanup(container *bootstrap.Container, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if evicted := container.Dispatcher.CleanupInactiveSessions(context.Background(), maxIdle); evicted > 0 {
			container.Logger.Info("Cleanup", "Evicted inactive sessions", map[string]interface{}{"count": evicted})
		}
	}
}
