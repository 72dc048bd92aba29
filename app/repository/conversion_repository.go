package repository

import (
	"errors"
	"strings"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// conversionRepository implements the ConversionRepository interface
type conversionRepository struct {
	db *gorm.DB
}

// NewConversionRepository creates a new conversion repository instance
func NewConversionRepository(db *gorm.DB) ConversionRepository {
	return &conversionRepository{db: db}
}

func (r *conversionRepository) Create(conversion *models.Conversion) error {
	return r.db.Create(conversion).Error
}

func (r *conversionRepository) GetByID(id uint) (*models.Conversion, error) {
	var conversion models.Conversion
	if err := r.db.Preload("Items").First(&conversion, id).Error; err != nil {
		return nil, err
	}
	return &conversion, nil
}

// GetByTransactionID is the duplicate pre-check. The account scope matters:
// different tenants may legitimately see the same upstream transaction id.
func (r *conversionRepository) GetByTransactionID(accountID uint, transactionID string) (*models.Conversion, error) {
	var conversion models.Conversion
	err := r.db.Where("account_id = ? AND transaction_id = ?", accountID, transactionID).
		First(&conversion).Error
	if err != nil {
		return nil, err
	}
	return &conversion, nil
}

func (r *conversionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Conversion{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *conversionRepository) CreateItems(items []models.ConversionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *conversionRepository) CreateEvent(event *models.ConversionEvent) error {
	return r.db.Create(event).Error
}

func (r *conversionRepository) ListUnattributed(accountID uint, offset, limit int) ([]models.Conversion, error) {
	var conversions []models.Conversion
	err := r.db.Where("account_id = ? AND is_attributed = ?", accountID, false).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&conversions).Error
	return conversions, err
}

func (r *conversionRepository) CountByAccount(accountID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Conversion{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

// IsDuplicateKey reports whether an insert failed on the unique
// transaction-id index. The pre-check read is not atomic with the insert,
// so two near-simultaneous deliveries can both pass it; the index is the
// real guard and a violation lands in the duplicate branch.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "1062")
}
