package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// leadRepository implements the LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository instance
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Upsert creates or refreshes the lead keyed by (account_id, email).
func (r *leadRepository) Upsert(lead *models.Lead) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"},
			{Name: "email"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"project_id",
			"name",
			"phone",
			"source",
			"amount",
			"conversion_id",
			"product_name",
			"status",
			"payment_method",
			"utm_source",
			"utm_medium",
			"utm_campaign",
			"utm_content",
			"utm_term",
			"updated_at",
		}),
	}).Create(lead).Error; err != nil {
		return err
	}

	return r.db.Where("account_id = ? AND email = ?", lead.AccountID, lead.Email).
		First(lead).Error
}

func (r *leadRepository) GetByAccountAndEmail(accountID uint, email string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.Where("account_id = ? AND email = ?", accountID, email).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) ListByAccount(accountID uint, offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("account_id = ?", accountID).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}
