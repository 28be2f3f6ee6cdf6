package main

import (
	"log"
	"os"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	// Extensions GORM AutoMigrate doesn't handle.
	color.Cyan("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	color.Cyan("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.Room{},
		&model.Message{},
		&model.MessageEdit{},
		&model.MessageDelivery{},
		&model.MessageRead{},
		&model.EventLog{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Migration completed: %d tables up to date", len(models))
}
