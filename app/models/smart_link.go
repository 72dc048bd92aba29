package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// SmartLink is a tracked redirect endpoint that fans out to weighted
// destination variants. Slug is the public short identifier used in the
// redirect URL.
type SmartLink struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	AccountID  uint               `gorm:"not null;index" json:"account_id"`
	ProjectID  *uint              `gorm:"index" json:"project_id,omitempty"`
	Name       string             `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Slug       string             `gorm:"uniqueIndex;type:varchar(32);not null" json:"slug"`
	ClickCount int64              `gorm:"default:0" json:"click_count"`
	IsActive   bool               `gorm:"default:true;index" json:"is_active"`
	Variants   []SmartLinkVariant `gorm:"foreignKey:SmartLinkID" json:"variants,omitempty"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt     `gorm:"index" json:"-"`
}

// SmartLinkVariant is one weighted destination URL of a smart link.
type SmartLinkVariant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SmartLinkID    uint      `gorm:"not null;index" json:"smart_link_id"`
	Name           string    `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	DestinationURL string    `gorm:"type:varchar(2048);not null" json:"destination_url" validate:"required,url,max=2048"`
	Weight         uint      `gorm:"default:1" json:"weight" validate:"min=1,max=100"`
	ClickCount     int64     `gorm:"default:0" json:"click_count"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *SmartLink) Validate() error {
	v := validator.New()

	if err := v.Struct(s); err != nil {
		return err
	}
	for i := range s.Variants {
		if err := v.Struct(&s.Variants[i]); err != nil {
			return err
		}
	}
	return nil
}
