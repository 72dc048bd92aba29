package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Platform identifiers for recognized checkout platforms. PlatformAuto means
// the payload shape decides; anything else overrides shape detection.
const (
	PlatformAuto    = "auto"
	PlatformHotmart = "hotmart"
	PlatformKirvano = "kirvano"
	PlatformKiwify  = "kiwify"
	PlatformUnknown = "unknown"
)

// Webhook is an inbound sale-ingestion identity. The Token is the opaque
// last path segment of the public webhook URL and resolves to at most one
// webhook.
type Webhook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	ProjectID *uint     `gorm:"index" json:"project_id,omitempty"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Token     string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"-"`
	Platform  string    `gorm:"type:varchar(32);default:'auto'" json:"platform" validate:"oneof=auto hotmart kirvano kiwify"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (w *Webhook) Validate() error {
	v := validator.New()

	return v.Struct(w)
}
