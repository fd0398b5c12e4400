// emit publishes a synthetic message-created event to the Redis stream, for
// exercising the fan-out pipeline without a running chat backend.
//
// Usage:
//
//	emit -redis redis://localhost:6379 -channel ch1 -owner u1 -text "hello"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/berkayemre/chitchat-notify/internal/events"
	"github.com/berkayemre/chitchat-notify/internal/models"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	channelID := flag.String("channel", "", "Channel id")
	ownerUID := flag.String("owner", "", "Sender uid")
	text := flag.String("text", "", "Message text")
	msgType := flag.String("type", models.TypeText, "Message type (text, photo, video, audio, admin)")
	flag.Parse()

	if *channelID == "" || *ownerUID == "" {
		fmt.Fprintln(os.Stderr, "Usage: emit -channel <id> -owner <uid> [-text <body>] [-type <type>] [-redis <url>]")
		os.Exit(1)
	}

	opts, err := redis.ParseURL(*redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid redis URL: %v\n", err)
		os.Exit(1)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := &models.MessageCreatedEvent{
		ChannelID: *channelID,
		MessageID: ulid.Make().String(),
		Message: models.Message{
			Text:      *text,
			Type:      *msgType,
			OwnerUID:  *ownerUID,
			Timestamp: time.Now().Unix(),
		},
	}

	if err := events.NewStreamPublisher(client).Publish(ctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "Publish failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Published message %s to channel %s\n", ev.MessageID, ev.ChannelID)
}
