package fanout

import (
	"github.com/berkayemre/chitchat-notify/internal/models"
	"github.com/berkayemre/chitchat-notify/internal/push"
)

// DefaultBadge reproduces the mobile client's static badge count. The live
// unread count is used instead when the service runs with PUSH_LIVE_BADGE.
const DefaultBadge = 1

// Bodies for media messages; the literal text is only pushed for text
// messages.
const (
	photoBody = "Sent a Photo Message"
	videoBody = "Sent a Video Message"
	audioBody = "Sent a Voice Message"
)

// Compose maps (message, channel, sender) to a push payload. Returns nil
// for admin messages, which are never pushed. The channel may be nil when
// the record is gone or the read was skipped; the title then falls back to
// the channel name captured at send time.
func Compose(msg *models.Message, ch *models.Channel, sender *models.User, badge int) *push.Notification {
	var body string
	switch msg.Type {
	case models.TypeText:
		body = msg.Text
	case models.TypePhoto:
		body = photoBody
	case models.TypeVideo:
		body = videoBody
	case models.TypeAudio:
		body = audioBody
	default:
		return nil
	}

	return &push.Notification{
		Title: composeTitle(msg, ch, sender),
		Body:  body,
		Sound: "default",
		Badge: badge,
	}
}

func composeTitle(msg *models.Message, ch *models.Channel, sender *models.User) string {
	name := sender.DisplayName()

	if ch != nil {
		if !ch.IsGroupChat() {
			return name
		}
		if ch.Name != "" {
			return name + " in " + ch.Name
		}
		if msg.ChannelNameAtSend != "" {
			return name + " in " + msg.ChannelNameAtSend
		}
		return name + " in a Group Chat"
	}

	// No channel record: trust the send-time snapshot.
	if msg.ChannelNameAtSend != "" {
		return name + " in " + msg.ChannelNameAtSend
	}
	return name
}
