package models

import "time"

// Click is one recorded redirect event. ClickID is the globally unique
// tracking identifier handed to the destination page; attribution later
// matches sales back to it. Rows are written once by the redirect handler
// and never mutated afterwards.
type Click struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClickID     string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"click_id"`
	SmartLinkID uint      `gorm:"not null;index" json:"smart_link_id"`
	VariantID   uint      `gorm:"not null;index" json:"variant_id"`
	AccountID   uint      `gorm:"not null;index:idx_clicks_account_utm_term,priority:1" json:"account_id"`
	ProjectID   *uint     `gorm:"index" json:"project_id,omitempty"`
	UTMSource   string    `gorm:"type:varchar(200)" json:"utm_source"`
	UTMMedium   string    `gorm:"type:varchar(200)" json:"utm_medium"`
	UTMCampaign string    `gorm:"type:varchar(200)" json:"utm_campaign"`
	UTMContent  string    `gorm:"type:varchar(200)" json:"utm_content"`
	UTMTerm     string    `gorm:"type:varchar(200);index:idx_clicks_account_utm_term,priority:2" json:"utm_term"`
	IP          string    `gorm:"type:varchar(45)" json:"-"`
	UserAgent   string    `gorm:"type:varchar(512)" json:"-"`
	Referrer    string    `gorm:"type:varchar(512)" json:"referrer"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
