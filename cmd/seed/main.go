package main

import (
	"context"
	"log"
	"os"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/implementation"
	"realtime-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var defaultRooms = []string{"general", "random", "tech"}

var demoUsers = []struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
}{
	{Username: "alice", Email: "alice@example.com", DisplayName: "Alice", Password: "password123"},
	{Username: "bob", Email: "bob@example.com", DisplayName: "Bob", Password: "password123"},
}

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

	ctx := context.Background()
	roomRepo := implementation.NewRoomRepository(db)
	userRepo := implementation.NewUserRepository(db)

	color.Cyan("Seeding default rooms...")
	for _, name := range defaultRooms {
		if _, err := roomRepo.GetOrCreate(ctx, name); err != nil {
			color.Red("Error: Failed to seed room %q: %v", name, err)
			os.Exit(1)
		}
		color.Green("  ✅ room %q", name)
	}

	color.Cyan("Seeding demo users...")
	for _, seed := range demoUsers {
		existing, err := userRepo.FindByUsername(ctx, seed.Username)
		if err != nil {
			color.Red("Error: Failed to look up user %q: %v", seed.Username, err)
			os.Exit(1)
		}
		if existing != nil {
			color.Yellow("  ➜ user %q already exists, skipping", seed.Username)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			color.Red("Error: Failed to hash password: %v", err)
			os.Exit(1)
		}
		user := &entity.User{
			Id:           uuid.New(),
			Username:     seed.Username,
			Email:        seed.Email,
			PasswordHash: string(hash),
			DisplayName:  seed.DisplayName,
			CreatedAt:    time.Now(),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			color.Red("Error: Failed to seed user %q: %v", seed.Username, err)
			os.Exit(1)
		}
		color.Green("  ✅ user %q", seed.Username)
	}

	color.Green("✅ Seeding completed")
}
