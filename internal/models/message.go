package models

import (
	"errors"
	"fmt"
)

// Message types, mirrored from the mobile client.
const (
	TypeText  = "text"
	TypePhoto = "photo"
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeAdmin = "admin"
)

// Message is a channel message record as written to the realtime store at
// channel-messages/{channelId}/{messageId}. Immutable once created.
type Message struct {
	ID        string `json:"-"` // from the record path, not the body
	ChannelID string `json:"-"`

	Text      string `json:"text"`
	Type      string `json:"type"`
	OwnerUID  string `json:"ownerUid"`
	Timestamp int64  `json:"timeStamp"` // epoch seconds

	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Captured client-side at send time so the trigger path can skip
	// server-side reads.
	ChannelNameAtSend string   `json:"channelNameAtSend,omitempty"`
	PartnerTokens     []string `json:"chatPartnersFCMTokens,omitempty"`
}

// IsAdmin reports whether this is a channel bookkeeping event rather than
// authored content. Admin messages are never pushed.
func (m *Message) IsAdmin() bool {
	return m.Type == TypeAdmin
}

// Validate rejects records with missing or unknown fields instead of
// silently defaulting them.
func (m *Message) Validate() error {
	switch m.Type {
	case TypeText, TypePhoto, TypeVideo, TypeAudio, TypeAdmin:
	case "":
		return errors.New("message type is required")
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	if m.OwnerUID == "" {
		return errors.New("ownerUid is required")
	}
	if m.Timestamp <= 0 {
		return errors.New("timeStamp is required")
	}
	return nil
}
