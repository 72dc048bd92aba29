package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// clickRepository implements the ClickRepository interface
type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates a new click repository instance
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(click *models.Click) error {
	return r.db.Create(click).Error
}

// GetByClickID is the exact-match lookup used by the first two attribution
// tiers. The click_id column carries a unique index, so this is a point read.
func (r *clickRepository) GetByClickID(clickID string) (*models.Click, error) {
	var click models.Click
	if err := r.db.Where("click_id = ?", clickID).First(&click).Error; err != nil {
		return nil, err
	}
	return &click, nil
}

// GetLatestByAccountAndTerm is the third attribution tier: newest click in
// the account whose own recorded utm_term equals the fallback value.
func (r *clickRepository) GetLatestByAccountAndTerm(accountID uint, term string) (*models.Click, error) {
	var click models.Click
	err := r.db.Where("account_id = ? AND utm_term = ?", accountID, term).
		Order("created_at DESC").First(&click).Error
	if err != nil {
		return nil, err
	}
	return &click, nil
}

func (r *clickRepository) CountBySmartLink(smartLinkID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).Where("smart_link_id = ?", smartLinkID).Count(&count).Error
	return count, err
}
