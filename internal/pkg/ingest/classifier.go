package ingest

import (
	"strings"

	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// statusTable maps raw platform status strings to canonical statuses. Only
// consulted when the event string carries no recognizable keyword.
var statusTable = map[string]string{
	"approved":        models.SaleStatusApproved,
	"paid":            models.SaleStatusApproved,
	"completed":       models.SaleStatusApproved,
	"succeeded":       models.SaleStatusApproved,
	"refunded":        models.SaleStatusRefunded,
	"refused":         models.SaleStatusCanceled,
	"chargeback":      models.SaleStatusChargedback,
	"chargedback":     models.SaleStatusChargedback,
	"dispute":         models.SaleStatusChargedback,
	"canceled":        models.SaleStatusCanceled,
	"cancelled":       models.SaleStatusCanceled,
	"expired":         models.SaleStatusCanceled,
	"waiting_payment": models.SaleStatusReceived,
	"pending":         models.SaleStatusReceived,
	"billet_printed":  models.SaleStatusReceived,
}

// ClassifyStatus turns the raw event string and platform status into one
// canonical status. Keyword matches on the event string win, then the
// status lookup table, then keyword matches on the status itself; anything
// unrecognized lands in the terminal "received" bucket.
func ClassifyStatus(eventType, rawStatus string) string {
	if c := keywordStatus(eventType); c != "" {
		return c
	}
	if c, ok := statusTable[strings.ToLower(strings.TrimSpace(rawStatus))]; ok {
		return c
	}
	if c := keywordStatus(rawStatus); c != "" {
		return c
	}
	return models.SaleStatusReceived
}

// keywordStatus scans for explicit status keywords. Negative keywords are
// checked before positive ones so "REFUND_APPROVED" classifies as a refund.
func keywordStatus(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return ""
	}
	switch {
	case strings.Contains(v, "refund"):
		return models.SaleStatusRefunded
	case strings.Contains(v, "chargeback"), strings.Contains(v, "dispute"):
		return models.SaleStatusChargedback
	case strings.Contains(v, "cancel"), strings.Contains(v, "expired"):
		return models.SaleStatusCanceled
	case strings.Contains(v, "approved"), strings.Contains(v, "paid"), strings.Contains(v, "completed"):
		return models.SaleStatusApproved
	default:
		return ""
	}
}

// IsNegativeStatus reports whether the canonical status reverses an earlier
// approved sale.
func IsNegativeStatus(status string) bool {
	switch status {
	case models.SaleStatusRefunded, models.SaleStatusChargedback, models.SaleStatusCanceled:
		return true
	default:
		return false
	}
}
