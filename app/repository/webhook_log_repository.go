package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// webhookLogRepository implements the WebhookLogRepository interface
type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository instance
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

func (r *webhookLogRepository) Create(logEntry *models.WebhookLog) error {
	return r.db.Create(logEntry).Error
}

// Update rewrites an existing log row in place; used by reprocess mode so a
// replayed payload changes the original row instead of piling up new ones.
func (r *webhookLogRepository) Update(logEntry *models.WebhookLog) error {
	return r.db.Save(logEntry).Error
}

func (r *webhookLogRepository) GetByID(id uint) (*models.WebhookLog, error) {
	var logEntry models.WebhookLog
	if err := r.db.First(&logEntry, id).Error; err != nil {
		return nil, err
	}
	return &logEntry, nil
}

func (r *webhookLogRepository) ListByAccount(accountID uint, offset, limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Where("account_id = ?", accountID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *webhookLogRepository) ListByWebhook(webhookID uint, offset, limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Where("webhook_id = ?", webhookID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}
