package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UnreadResponse reports one user's unread count for one channel.
type UnreadResponse struct {
	UID       string `json:"uid"`
	ChannelID string `json:"channelId"`
	Unread    int64  `json:"unread"`
}

// ResetUnread handles the user-opened-channel signal: the unread count for
// (uid, channel) drops to zero. Idempotent.
func (h *Handler) ResetUnread(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	channelID := chi.URLParam(r, "channelID")
	if uid == "" || channelID == "" {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "uid and channelID are required")
		return
	}

	if err := h.counters.ResetUnread(r.Context(), uid, channelID); err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to reset unread count")
		return
	}

	h.JSON(w, http.StatusOK, UnreadResponse{UID: uid, ChannelID: channelID, Unread: 0})
}

// GetUnread returns the current unread count, for client bootstrap.
func (h *Handler) GetUnread(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	channelID := chi.URLParam(r, "channelID")
	if uid == "" || channelID == "" {
		h.Error(w, http.StatusBadRequest, KindInvalidArgument, "uid and channelID are required")
		return
	}

	count, err := h.counters.GetUnread(r.Context(), uid, channelID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to read unread count")
		return
	}

	h.JSON(w, http.StatusOK, UnreadResponse{UID: uid, ChannelID: channelID, Unread: count})
}
