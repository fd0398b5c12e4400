package models

import (
	"strings"
	"testing"
)

func TestDecodeMessageCreated(t *testing.T) {
	data := []byte(`{
		"channelId": "ch1",
		"messageId": "m1",
		"message": {
			"text": "Hello",
			"type": "text",
			"ownerUid": "u1",
			"timeStamp": 1700000000,
			"chatPartnersFCMTokens": ["tok-1", "tok-2"]
		}
	}`)

	ev, err := DecodeMessageCreated(data)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Message.ID != "m1" || ev.Message.ChannelID != "ch1" {
		t.Fatalf("path ids not propagated: %+v", ev.Message)
	}
	if ev.Message.Text != "Hello" || ev.Message.OwnerUID != "u1" {
		t.Fatalf("unexpected message %+v", ev.Message)
	}
	if len(ev.Message.PartnerTokens) != 2 {
		t.Fatalf("expected 2 partner tokens, got %d", len(ev.Message.PartnerTokens))
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	data := []byte(`{
		"channelId": "ch1",
		"messageId": "m1",
		"message": {"text": "x", "type": "sticker", "ownerUid": "u1", "timeStamp": 1}
	}`)

	_, err := DecodeMessageCreated(data)
	if err == nil {
		t.Fatal("expected error for unknown message type")
	}
	if !strings.Contains(err.Error(), "sticker") {
		t.Fatalf("error should name the bad type, got %q", err)
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"no channel": `{"messageId": "m1", "message": {"type": "text", "ownerUid": "u1", "timeStamp": 1}}`,
		"no message": `{"channelId": "ch1", "message": {"type": "text", "ownerUid": "u1", "timeStamp": 1}}`,
		"no owner":   `{"channelId": "ch1", "messageId": "m1", "message": {"type": "text", "timeStamp": 1}}`,
		"no type":    `{"channelId": "ch1", "messageId": "m1", "message": {"ownerUid": "u1", "timeStamp": 1}}`,
		"no ts":      `{"channelId": "ch1", "messageId": "m1", "message": {"type": "text", "ownerUid": "u1"}}`,
		"bad json":   `{`,
	}
	for name, data := range cases {
		if _, err := DecodeMessageCreated([]byte(data)); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestDecodeAcceptsAdmin(t *testing.T) {
	data := []byte(`{
		"channelId": "ch1",
		"messageId": "m1",
		"message": {"text": "channelCreation", "type": "admin", "ownerUid": "u1", "timeStamp": 1}
	}`)

	ev, err := DecodeMessageCreated(data)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Message.IsAdmin() {
		t.Fatal("expected an admin message")
	}
}

func TestChannelIsGroupChat(t *testing.T) {
	direct := &Channel{MembersUids: []string{"a", "b"}}
	if direct.IsGroupChat() {
		t.Fatal("two members is a direct chat")
	}
	group := &Channel{MembersUids: []string{"a", "b", "c"}}
	if !group.IsGroupChat() {
		t.Fatal("three members is a group chat")
	}
}

func TestUserTokenAndDisplayName(t *testing.T) {
	tok := "tok-1"
	u := &User{UID: "u1", Username: "Sam", FCMToken: &tok}
	if u.Token() != "tok-1" {
		t.Fatalf("expected token, got %q", u.Token())
	}

	bare := &User{UID: "u2"}
	if bare.Token() != "" {
		t.Fatalf("expected empty token, got %q", bare.Token())
	}
	if bare.DisplayName() != "Someone" {
		t.Fatalf("expected fallback name, got %q", bare.DisplayName())
	}

	var nilUser *User
	if nilUser.DisplayName() != "Someone" || nilUser.Token() != "" {
		t.Fatal("nil user should behave like an absent record")
	}
}
