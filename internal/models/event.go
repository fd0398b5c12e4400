package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageCreatedEvent is published when a message record is written to
// channel-messages/{channelId}/{messageId}. The underlying sources deliver
// it at least once; consumers must tolerate duplicates.
type MessageCreatedEvent struct {
	ChannelID string  `json:"channelId"`
	MessageID string  `json:"messageId"`
	Message   Message `json:"message"`
}

// DecodeMessageCreated parses and validates an event payload. A non-nil
// error means the payload is permanently malformed, not transient.
func DecodeMessageCreated(data []byte) (*MessageCreatedEvent, error) {
	var ev MessageCreatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode message-created event: %w", err)
	}
	if ev.ChannelID == "" {
		return nil, errors.New("message-created event: channelId is required")
	}
	if ev.MessageID == "" {
		return nil, errors.New("message-created event: messageId is required")
	}
	if err := ev.Message.Validate(); err != nil {
		return nil, fmt.Errorf("message-created event: %w", err)
	}
	ev.Message.ID = ev.MessageID
	ev.Message.ChannelID = ev.ChannelID
	return &ev, nil
}

// Encode serializes the event for publishing.
func (ev *MessageCreatedEvent) Encode() ([]byte, error) {
	return json.Marshal(ev)
}
