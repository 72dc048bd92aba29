package models

import "time"

// Canonical sale statuses produced by the event classifier. These are the
// only values stored on conversions and webhook logs.
const (
	SaleStatusApproved    = "approved"
	SaleStatusRefunded    = "refunded"
	SaleStatusChargedback = "chargedback"
	SaleStatusCanceled    = "canceled"
	SaleStatusIgnored     = "ignored"
	SaleStatusError       = "error"
	SaleStatusDuplicate   = "duplicate"
	SaleStatusReceived    = "received"
)

// Conversion is a normalized, persisted sale. TransactionID is the dedup
// key, enforced per account by a unique index; later negative events
// (refund, chargeback, cancel) update Status in place instead of inserting
// a second row.
type Conversion struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	AccountID         uint       `gorm:"not null;index:ux_conversions_account_tx,unique,priority:1" json:"account_id"`
	ProjectID         *uint      `gorm:"index" json:"project_id,omitempty"`
	WebhookID         uint       `gorm:"not null;index" json:"webhook_id"`
	SmartLinkID       *uint      `gorm:"index" json:"smart_link_id,omitempty"`
	VariantID         *uint      `gorm:"index" json:"variant_id,omitempty"`
	AttributedClickID string     `gorm:"type:varchar(64);index" json:"attributed_click_id"`
	IsAttributed      bool       `gorm:"default:false;index" json:"is_attributed"`
	TransactionID     string     `gorm:"type:varchar(191);not null;index:ux_conversions_account_tx,unique,priority:2" json:"transaction_id"`
	RefID             string     `gorm:"type:varchar(191)" json:"ref_id"`
	Platform          string     `gorm:"type:varchar(32);index" json:"platform"`
	Status            string     `gorm:"type:varchar(20);not null;index" json:"status"`
	EventType         string     `gorm:"type:varchar(120)" json:"event_type"`
	Amount            float64    `json:"amount"`
	BaseAmount        float64    `json:"base_amount"`
	Fees              float64    `json:"fees"`
	NetAmount         float64    `json:"net_amount"`
	Currency          string     `gorm:"type:varchar(8);default:'BRL'" json:"currency"`
	ProductName       string     `gorm:"type:varchar(255)" json:"product_name"`
	ExternalProductID string     `gorm:"type:varchar(191);index" json:"external_product_id"`
	PaymentMethod     string     `gorm:"type:varchar(50)" json:"payment_method"`
	CustomerName      string     `gorm:"type:varchar(200)" json:"customer_name"`
	CustomerEmail     string     `gorm:"type:varchar(200);index" json:"customer_email"`
	CustomerPhone     string     `gorm:"type:varchar(32)" json:"customer_phone"`
	IsOrderBump       bool       `gorm:"default:false" json:"is_order_bump"`
	UTMSource         string     `gorm:"type:varchar(200)" json:"utm_source"`
	UTMMedium         string     `gorm:"type:varchar(200)" json:"utm_medium"`
	UTMCampaign       string     `gorm:"type:varchar(200)" json:"utm_campaign"`
	UTMContent        string     `gorm:"type:varchar(200)" json:"utm_content"`
	UTMTerm           string     `gorm:"type:varchar(200)" json:"utm_term"`
	RawPayload        JSON       `gorm:"type:longtext" json:"raw_payload,omitempty"`
	PaidAt            time.Time  `json:"paid_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Items []ConversionItem `gorm:"foreignKey:ConversionID" json:"items,omitempty"`
}

// ConversionItem is one line item of a conversion: the primary product plus
// one row per order bump. Items are written alongside the conversion and
// never updated.
type ConversionItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConversionID uint      `gorm:"not null;index" json:"conversion_id"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	Amount       float64   `json:"amount"`
	IsOrderBump  bool      `gorm:"default:false" json:"is_order_bump"`
	Position     int       `gorm:"default:0" json:"position"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ConversionEvent is an immutable audit row recording each status the
// conversion passed through.
type ConversionEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConversionID uint      `gorm:"not null;index" json:"conversion_id"`
	Status       string    `gorm:"type:varchar(20);not null" json:"status"`
	EventType    string    `gorm:"type:varchar(120)" json:"event_type"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
