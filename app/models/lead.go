package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Lead is the CRM-side contact record upserted best-effort after an
// approved sale. Keyed by email (or phone when no email is present) within
// an account.
type Lead struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountID     uint      `gorm:"not null;index:ux_leads_account_email,unique,priority:1" json:"account_id"`
	ProjectID     *uint     `gorm:"index" json:"project_id,omitempty"`
	Name          string    `gorm:"type:varchar(200)" json:"name" validate:"max=200"`
	Email         string    `gorm:"type:varchar(200);index:ux_leads_account_email,unique,priority:2" json:"email" validate:"omitempty,email,max=200"`
	Phone         string    `gorm:"type:varchar(32)" json:"phone" validate:"max=32"`
	Source        string    `gorm:"type:varchar(32)" json:"source"`
	Amount        float64   `json:"amount"`
	ConversionID  *uint     `gorm:"index" json:"conversion_id,omitempty"`
	ProductName   string    `gorm:"type:varchar(255)" json:"product_name"`
	Status        string    `gorm:"type:varchar(20)" json:"status"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"payment_method"`
	UTMSource     string    `gorm:"type:varchar(200)" json:"utm_source"`
	UTMMedium     string    `gorm:"type:varchar(200)" json:"utm_medium"`
	UTMCampaign   string    `gorm:"type:varchar(200)" json:"utm_campaign"`
	UTMContent    string    `gorm:"type:varchar(200)" json:"utm_content"`
	UTMTerm       string    `gorm:"type:varchar(200)" json:"utm_term"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lead) Validate() error {
	v := validator.New()

	return v.Struct(l)
}
