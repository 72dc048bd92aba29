package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// smartLinkRepository implements the SmartLinkRepository interface
type smartLinkRepository struct {
	db *gorm.DB
}

// NewSmartLinkRepository creates a new smart link repository instance
func NewSmartLinkRepository(db *gorm.DB) SmartLinkRepository {
	return &smartLinkRepository{db: db}
}

func (r *smartLinkRepository) Create(link *models.SmartLink) error {
	return r.db.Create(link).Error
}

func (r *smartLinkRepository) GetByID(id uint) (*models.SmartLink, error) {
	var link models.SmartLink
	if err := r.db.Preload("Variants").First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// GetBySlug loads the smart link addressed by a redirect URL, with its
// variants preloaded for the weighted pick.
func (r *smartLinkRepository) GetBySlug(slug string) (*models.SmartLink, error) {
	var link models.SmartLink
	err := r.db.Preload("Variants", "is_active = ?", true).
		Where("slug = ?", slug).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *smartLinkRepository) Update(link *models.SmartLink) error {
	return r.db.Save(link).Error
}

func (r *smartLinkRepository) Delete(id uint) error {
	return r.db.Delete(&models.SmartLink{}, id).Error
}

func (r *smartLinkRepository) ListByAccount(accountID uint, offset, limit int) ([]models.SmartLink, error) {
	var links []models.SmartLink
	err := r.db.Preload("Variants").Where("account_id = ?", accountID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&links).Error
	return links, err
}

func (r *smartLinkRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SmartLink{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
