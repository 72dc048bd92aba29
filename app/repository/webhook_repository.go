package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(webhook *models.Webhook) error {
	return r.db.Create(webhook).Error
}

func (r *webhookRepository) GetByID(id uint) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := r.db.First(&webhook, id).Error; err != nil {
		return nil, err
	}
	return &webhook, nil
}

// GetByToken resolves the opaque URL token to a webhook identity.
func (r *webhookRepository) GetByToken(token string) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := r.db.Where("token = ?", token).First(&webhook).Error; err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *webhookRepository) Update(webhook *models.Webhook) error {
	return r.db.Save(webhook).Error
}

func (r *webhookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Webhook{}, id).Error
}

func (r *webhookRepository) ListByAccount(accountID uint, offset, limit int) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.Where("account_id = ?", accountID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepository) LinkProduct(webhookID, productID uint) error {
	return r.db.Create(&models.WebhookProduct{WebhookID: webhookID, ProductID: productID}).Error
}

func (r *webhookRepository) GetLinkedProductExternalIDs(webhookID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Product{}).
		Joins("JOIN webhook_products ON webhook_products.product_id = products.id").
		Where("webhook_products.webhook_id = ?", webhookID).
		Pluck("products.external_id", &ids).Error
	return ids, err
}
