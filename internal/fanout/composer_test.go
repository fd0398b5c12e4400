package fanout

import (
	"testing"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

func textMessage(body string) *models.Message {
	return &models.Message{
		ID: "m1", ChannelID: "ch1",
		Text: body, Type: models.TypeText, OwnerUID: "s", Timestamp: 1700000000,
	}
}

func TestComposeTextBodyIsLiteral(t *testing.T) {
	msg := textMessage("Hello")
	ch := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}
	sender := &models.User{UID: "s", Username: "Sam"}

	n := Compose(msg, ch, sender, DefaultBadge)
	if n == nil {
		t.Fatal("expected a notification")
	}
	if n.Body != "Hello" {
		t.Fatalf("expected body %q, got %q", "Hello", n.Body)
	}
	if n.Sound != "default" {
		t.Fatalf("expected default sound, got %q", n.Sound)
	}
}

func TestComposeMediaBodies(t *testing.T) {
	ch := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}
	sender := &models.User{UID: "s", Username: "Sam"}

	cases := map[string]string{
		models.TypePhoto: "Sent a Photo Message",
		models.TypeVideo: "Sent a Video Message",
		models.TypeAudio: "Sent a Voice Message",
	}
	for msgType, want := range cases {
		msg := textMessage("ignored")
		msg.Type = msgType
		n := Compose(msg, ch, sender, DefaultBadge)
		if n == nil {
			t.Fatalf("%s: expected a notification", msgType)
		}
		if n.Body != want {
			t.Fatalf("%s: expected body %q, got %q", msgType, want, n.Body)
		}
	}
}

func TestComposeAdminReturnsNil(t *testing.T) {
	msg := textMessage("channelCreation")
	msg.Type = models.TypeAdmin
	ch := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}
	sender := &models.User{UID: "s", Username: "Sam"}

	if n := Compose(msg, ch, sender, DefaultBadge); n != nil {
		t.Fatalf("admin messages must not compose, got %+v", n)
	}
}

func TestComposeTitles(t *testing.T) {
	msg := textMessage("hi")
	sender := &models.User{UID: "s", Username: "Sam"}

	direct := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}
	if got := Compose(msg, direct, sender, 1).Title; got != "Sam" {
		t.Fatalf("direct chat title should be the sender name, got %q", got)
	}

	named := &models.Channel{ID: "ch1", Name: "Weekend Plans", MembersUids: []string{"s", "a", "b"}}
	if got := Compose(msg, named, sender, 1).Title; got != "Sam in Weekend Plans" {
		t.Fatalf("named group title wrong: %q", got)
	}

	unnamed := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a", "b"}}
	if got := Compose(msg, unnamed, sender, 1).Title; got != "Sam in a Group Chat" {
		t.Fatalf("unnamed group title wrong: %q", got)
	}
}

func TestComposeUnnamedGroupFallsBackToSendTimeName(t *testing.T) {
	msg := textMessage("hi")
	msg.ChannelNameAtSend = "Road Trip"
	sender := &models.User{UID: "s", Username: "Sam"}

	unnamed := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a", "b"}}
	if got := Compose(msg, unnamed, sender, 1).Title; got != "Sam in Road Trip" {
		t.Fatalf("expected the send-time snapshot name, got %q", got)
	}

	// Without any channel record the snapshot still wins.
	if got := Compose(msg, nil, sender, 1).Title; got != "Sam in Road Trip" {
		t.Fatalf("expected the send-time snapshot name, got %q", got)
	}
}

func TestComposeSenderFallbackName(t *testing.T) {
	msg := textMessage("hi")
	direct := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}

	if got := Compose(msg, direct, nil, 1).Title; got != "Someone" {
		t.Fatalf("missing sender should fall back to %q, got %q", "Someone", got)
	}
}

func TestComposeBadgePassesThrough(t *testing.T) {
	msg := textMessage("hi")
	direct := &models.Channel{ID: "ch1", MembersUids: []string{"s", "a"}}
	sender := &models.User{UID: "s", Username: "Sam"}

	if got := Compose(msg, direct, sender, 7).Badge; got != 7 {
		t.Fatalf("expected badge 7, got %d", got)
	}
}
