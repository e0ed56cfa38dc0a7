package web

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// handlePaymentsWebhook applies a billing provider callback to the matching
// subscription. The endpoint is public and must stay total: a callback for
// a subscription this instance does not know is acknowledged and dropped,
// never an error, so the provider does not retry forever.
func handlePaymentsWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriptionID string `json:"subscriptionId"`
		Status         string `json:"status"`
		PeriodEnd      string `json:"periodEnd"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubscriptionID == "" {
		writeError(w, http.StatusBadRequest, "subscriptionId is required")
		return
	}

	sub, err := stores.SubscriptionStore.GetByID(r.Context(), req.SubscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Info("webhook_ignored", "subscription_id", req.SubscriptionID)
		writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if req.Status != "" {
		sub.Status = req.Status
	}
	if req.PeriodEnd != "" {
		periodEnd, err := time.Parse(time.RFC3339, req.PeriodEnd)
		if err != nil {
			periodEnd, err = time.Parse("2006-01-02", req.PeriodEnd)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "periodEnd must be RFC 3339 or YYYY-MM-DD")
			return
		}
		sub.PeriodEnd = periodEnd
	}
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := stores.SubscriptionStore.Save(r.Context(), sub); err != nil {
		internalError(w, err)
		return
	}

	slog.Info("webhook_applied", "subscription_id", sub.ID, "club_id", sub.ClubID, "status", sub.Status)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
