package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/implementation"
	"realtime-chat-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a migrated postgres; skipped when DB_CONNECTION_STRING is unset.
func TestGormConnection(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())

	ctx := context.Background()
	roomRepo := implementation.NewRoomRepository(gormDB)
	messageRepo := implementation.NewMessageRepository(gormDB)
	receiptRepo := implementation.NewReceiptRepository(gormDB)

	t.Run("room get-or-create is idempotent", func(t *testing.T) {
		name := "itest-" + time.Now().Format("150405.000")
		first, err := roomRepo.GetOrCreate(ctx, name)
		require.NoError(t, err)
		second, err := roomRepo.GetOrCreate(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
	})

	t.Run("receipt insert reports duplicates", func(t *testing.T) {
		room := "itest-receipts-" + time.Now().Format("150405.000")
		_, err := roomRepo.GetOrCreate(ctx, room)
		require.NoError(t, err)

		msg := &entity.Message{Room: room, AuthorId: "itest-author", Text: "hello", CreatedAt: time.Now()}
		require.NoError(t, messageRepo.Create(ctx, msg))
		require.NotZero(t, msg.Id)

		inserted, err := receiptRepo.InsertRead(ctx, msg.Id, "itest-reader")
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = receiptRepo.InsertRead(ctx, msg.Id, "itest-reader")
		require.NoError(t, err)
		assert.False(t, inserted)

		readBy, err := receiptRepo.ListReadBy(ctx, msg.Id)
		require.NoError(t, err)
		assert.Equal(t, []string{"itest-reader"}, readBy)
	})
}
