package handlers

import (
	"net/http"
	"time"
)

// DeliveryPreview is one recent push attempt.
type DeliveryPreview struct {
	ID           string `json:"id"`
	MessageID    string `json:"message_id"`
	ChannelID    string `json:"channel_id"`
	RecipientUID string `json:"recipient_uid,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// StatsResponse summarizes the delivery log.
type StatsResponse struct {
	TotalDeliveries  int64             `json:"total_deliveries"`
	FailedDeliveries int64             `json:"failed_deliveries"`
	LastAttempt      string            `json:"last_attempt"`
	Recent           []DeliveryPreview `json:"recent"`
}

// Stats returns delivery statistics from the audit log.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.deliveries == nil {
		h.Error(w, http.StatusServiceUnavailable, KindFailedPrecondition, "delivery log not configured")
		return
	}

	ctx := r.Context()

	stats, err := h.deliveries.GetStats(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to aggregate deliveries")
		return
	}

	lastAttempt := "no deliveries yet"
	if stats.LastAttempt != nil {
		lastAttempt = stats.LastAttempt.UTC().Format(time.RFC3339)
	}

	deliveries, err := h.deliveries.RecentDeliveries(ctx, 10)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, KindInternal, "failed to list deliveries")
		return
	}

	recent := make([]DeliveryPreview, 0, len(deliveries))
	for _, d := range deliveries {
		recent = append(recent, DeliveryPreview{
			ID:           d.ID.String(),
			MessageID:    d.MessageID,
			ChannelID:    d.ChannelID,
			RecipientUID: d.RecipientUID,
			Status:       d.Status,
			Error:        d.Error,
			CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalDeliveries:  stats.Total,
		FailedDeliveries: stats.Failed,
		LastAttempt:      lastAttempt,
		Recent:           recent,
	})
}
