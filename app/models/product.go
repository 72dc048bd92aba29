package models

import "time"

// Product is a sellable item on an upstream checkout platform. ExternalID is
// the platform-scoped product identifier echoed back in sale payloads.
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AccountID  uint      `gorm:"not null;index" json:"account_id"`
	Name       string    `gorm:"type:varchar(255)" json:"name" validate:"required,max=255"`
	ExternalID string    `gorm:"type:varchar(191);index" json:"external_id"`
	Platform   string    `gorm:"type:varchar(32)" json:"platform"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WebhookProduct links a webhook to the products it is allowed to report
// sales for. A webhook with no links accepts sales for any product.
type WebhookProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WebhookID uint      `gorm:"not null;index:ux_webhook_products_pair,unique,priority:1" json:"webhook_id"`
	ProductID uint      `gorm:"not null;index:ux_webhook_products_pair,unique,priority:2" json:"product_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
