package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"realtime-chat-be/pkg/events"
	"realtime-chat-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// events_tail follows the exported chat event stream. Useful for verifying
// that the server is publishing to JetStream and for inspecting payloads
// during development.
func main() {
	subject := flag.String("subject", "chat.>", "subject filter to tail")
	durable := flag.String("durable", "events-tail", "durable consumer name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	sub, err := nats.NewSubscriber(url)
	if err != nil {
		color.Red("Error: Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	err = sub.Subscribe(*subject, *durable, func(ctx context.Context, event events.Event) error {
		data, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		color.Cyan("[%s] %s", event.Timestamp().Format("15:04:05.000"), event.EventType())
		color.White("  %s", data)
		return nil
	})
	if err != nil {
		color.Red("Error: Failed to subscribe: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Tailing %s (durable %q), press Ctrl+C to stop", *subject, *durable)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
