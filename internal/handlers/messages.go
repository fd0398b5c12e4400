package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/berkayemre/chitchat-notify/internal/models"
)

// IngestRequest is the message ingest body. The message id is assigned
// server-side when absent.
type IngestRequest struct {
	ChannelID string         `json:"channelId"`
	MessageID string         `json:"messageId,omitempty"`
	Message   models.Message `json:"message"`
}

// IngestResponse returns the stored message's coordinates.
type IngestResponse struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// IngestMessage stores a message record and publishes the message-created
// event that drives fan-out. Lets backend services that cannot write the
// event stream directly go through HTTP.
func (h *Handler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "invalid JSON body")
		return
	}

	if req.ChannelID == "" {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "channelId is required")
		return
	}
	if req.MessageID == "" {
		req.MessageID = ulid.Make().String()
	}
	if req.Message.Timestamp == 0 {
		req.Message.Timestamp = time.Now().Unix()
	}
	if err := req.Message.Validate(); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, KindInvalidArgument, err.Error())
		return
	}
	req.Message.ID = req.MessageID
	req.Message.ChannelID = req.ChannelID

	if err := h.messages.AddMessage(r.Context(), &req.Message); err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to store message")
		return
	}

	ev := &models.MessageCreatedEvent{
		ChannelID: req.ChannelID,
		MessageID: req.MessageID,
		Message:   req.Message,
	}
	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to publish event")
		return
	}

	h.JSON(w, http.StatusCreated, IngestResponse{
		ChannelID: req.ChannelID,
		MessageID: req.MessageID,
	})
}
