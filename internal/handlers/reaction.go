package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/berkayemre/chitchat-notify/internal/metrics"
	"github.com/berkayemre/chitchat-notify/internal/push"
)

// ReactionRequest is the reaction notification callable's body: one
// recipient token and a pre-composed title and body ("X reacted with ...").
type ReactionRequest struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ReactionResponse acknowledges a successful send.
type ReactionResponse struct {
	Sent bool `json:"sent"`
}

// SendReactionNotification performs a single best-effort push send: no
// fan-out, no counter mutation. Auth is enforced by middleware; a send
// failure surfaces as kind "aborted".
func (h *Handler) SendReactionNotification(w http.ResponseWriter, r *http.Request) {
	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "invalid JSON body")
		return
	}

	if req.Token == "" {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "token is required")
		return
	}
	if req.Title == "" || req.Body == "" {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "title and body are required")
		return
	}

	n := &push.Notification{
		Title: req.Title,
		Body:  req.Body,
		Sound: "default",
		Badge: 1,
	}
	if err := h.sink.Send(r.Context(), req.Token, n); err != nil {
		metrics.ReactionNotifications.WithLabelValues("error").Inc()
		h.Error(w, http.StatusBadGateway, KindAborted, "push send failed")
		return
	}

	metrics.ReactionNotifications.WithLabelValues("ok").Inc()
	h.JSON(w, http.StatusOK, ReactionResponse{Sent: true})
}
