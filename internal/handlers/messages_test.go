package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

type fakeMessages struct {
	stored []*models.Message
}

func (m *fakeMessages) AddMessage(ctx context.Context, msg *models.Message) error {
	m.stored = append(m.stored, msg)
	return nil
}

type fakePublisher struct {
	events []*models.MessageCreatedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, ev *models.MessageCreatedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func TestIngestMessage(t *testing.T) {
	msgs := &fakeMessages{}
	pub := &fakePublisher{}
	h := &Handler{messages: msgs, publisher: pub}

	body := `{"channelId":"ch1","message":{"text":"Hi","type":"text","ownerUid":"s","timeStamp":1700000000}}`
	req := httptest.NewRequest("POST", "/messages", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.IngestMessage(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ChannelID != "ch1" {
		t.Fatalf("expected channelId ch1, got %q", resp.ChannelID)
	}
	if resp.MessageID == "" {
		t.Fatal("expected a server-assigned message id")
	}

	if len(msgs.stored) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(msgs.stored))
	}
	if msgs.stored[0].ID != resp.MessageID || msgs.stored[0].ChannelID != "ch1" {
		t.Fatalf("stored message coordinates mismatch: %+v", msgs.stored[0])
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	if pub.events[0].MessageID != resp.MessageID {
		t.Fatalf("published event id %q does not match response %q", pub.events[0].MessageID, resp.MessageID)
	}
}

func TestIngestMessageKeepsClientID(t *testing.T) {
	msgs := &fakeMessages{}
	pub := &fakePublisher{}
	h := &Handler{messages: msgs, publisher: pub}

	body := `{"channelId":"ch1","messageId":"m42","message":{"text":"Hi","type":"text","ownerUid":"s","timeStamp":1700000000}}`
	req := httptest.NewRequest("POST", "/messages", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.IngestMessage(w, req)

	var resp IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.MessageID != "m42" {
		t.Fatalf("expected client-supplied id m42, got %q", resp.MessageID)
	}
}

func TestIngestMessageValidation(t *testing.T) {
	h := &Handler{messages: &fakeMessages{}, publisher: &fakePublisher{}}

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing channel", `{"message":{"text":"Hi","type":"text","ownerUid":"s","timeStamp":1}}`, http.StatusBadRequest},
		{"unknown type", `{"channelId":"ch1","message":{"text":"Hi","type":"sticker","ownerUid":"s","timeStamp":1}}`, http.StatusUnprocessableEntity},
		{"missing owner", `{"channelId":"ch1","message":{"text":"Hi","type":"text","timeStamp":1}}`, http.StatusUnprocessableEntity},
		{"not json", `nope`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/messages", strings.NewReader(tc.body))
		w := httptest.NewRecorder()
		h.IngestMessage(w, req)
		if w.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.code, w.Code, w.Body.String())
		}
	}
}
