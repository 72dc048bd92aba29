package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

const apiKeyPrefix = "lp_"

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Account is a tenant. Every smart link, webhook, click and conversion
// belongs to exactly one account. The API key authenticates the operator
// API; only its hash is stored.
type Account struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email           string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Status          string         `gorm:"type:varchar(50);default:'active';index" json:"status" validate:"oneof=active inactive disabled"`
	APIKeyHash      string         `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	APIKeyPrefix    string         `gorm:"type:varchar(16)" json:"api_key_prefix,omitempty"`
	APIKeyCreatedAt *time.Time     `json:"api_key_created_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// GenerateAPIKey creates a fresh API key, stores prefix and hash on the
// account and returns the raw key. The raw key is shown once and never
// persisted.
func (a *Account) GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	rawKey := apiKeyPrefix + strings.ToLower(apiKeyEncoding.EncodeToString(b))
	if len(rawKey) < 12 {
		return "", fmt.Errorf("api key generation failed: key too short")
	}

	a.APIKeyHash = HashAPIKey(rawKey)
	a.APIKeyPrefix = rawKey[:16]
	now := time.Now()
	a.APIKeyCreatedAt = &now
	return rawKey, nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// Project groups smart links and webhooks inside an account. An inactive
// project pauses webhook processing for everything attached to it.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
