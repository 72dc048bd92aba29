package models

import "time"

// WebhookLog records the outcome of every webhook request for the dashboard
// log view: which platform, the raw payload, the final status bucket and a
// human-readable reason when the payload was not converted. Normally
// append-only; a reprocess run updates the original row in place.
type WebhookLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     *uint     `gorm:"index" json:"account_id,omitempty"`
	ProjectID     *uint     `gorm:"index" json:"project_id,omitempty"`
	WebhookID     *uint     `gorm:"index" json:"webhook_id,omitempty"`
	Platform      string    `gorm:"type:varchar(32);index" json:"platform"`
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`
	EventType     string    `gorm:"type:varchar(120)" json:"event_type"`
	TransactionID string    `gorm:"type:varchar(191);index" json:"transaction_id"`
	SmartLinkID   *uint     `json:"smart_link_id,omitempty"`
	VariantID     *uint     `json:"variant_id,omitempty"`
	IsAttributed  bool      `gorm:"default:false" json:"is_attributed"`
	IgnoreReason  string    `gorm:"type:varchar(255)" json:"ignore_reason"`
	RawPayload    JSON      `gorm:"type:longtext" json:"raw_payload,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
