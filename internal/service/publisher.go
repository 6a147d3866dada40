package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EventPublisher delivers a JSON-serializable event to the current
// subscribers of a named channel. At-most-once: subscribers that join later
// must fetch history separately.
type EventPublisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// Event name carried by chat message publications.
const EventNewMessage = "new-message"

// ChatChannel returns the pub/sub channel name for a chat.
func ChatChannel(chatID uuid.UUID) string {
	return fmt.Sprintf("chat-%s", chatID)
}
