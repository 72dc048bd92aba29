package repository

import (
	"github.com/RodrigoFalk/LinkPulse/app/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for tenant accounts
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByAPIKeyHash(hash string) (*models.Account, error)
	Update(account *models.Account) error
}

// WebhookRepository defines the interface for webhook-identity operations
type WebhookRepository interface {
	Create(webhook *models.Webhook) error
	GetByID(id uint) (*models.Webhook, error)
	GetByToken(token string) (*models.Webhook, error)
	Update(webhook *models.Webhook) error
	Delete(id uint) error
	ListByAccount(accountID uint, offset, limit int) ([]models.Webhook, error)
	LinkProduct(webhookID, productID uint) error
	// GetLinkedProductExternalIDs returns the platform-scoped ids of all
	// products linked to the webhook. Empty slice = unrestricted webhook.
	GetLinkedProductExternalIDs(webhookID uint) ([]string, error)
}

// ProjectRepository defines the interface for project lookups
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	ListByAccount(accountID uint) ([]models.Project, error)
}

// SmartLinkRepository defines the interface for smart-link operations
type SmartLinkRepository interface {
	Create(link *models.SmartLink) error
	GetByID(id uint) (*models.SmartLink, error)
	GetBySlug(slug string) (*models.SmartLink, error)
	Update(link *models.SmartLink) error
	Delete(id uint) error
	ListByAccount(accountID uint, offset, limit int) ([]models.SmartLink, error)
	SlugExists(slug string) (bool, error)
}

// ClickRepository defines the interface for the click ledger. Clicks are
// written once at redirect time and read back during attribution.
type ClickRepository interface {
	Create(click *models.Click) error
	GetByClickID(clickID string) (*models.Click, error)
	GetLatestByAccountAndTerm(accountID uint, term string) (*models.Click, error)
	CountBySmartLink(smartLinkID uint) (int64, error)
}

// ConversionRepository defines the interface for persisted sales
type ConversionRepository interface {
	Create(conversion *models.Conversion) error
	GetByID(id uint) (*models.Conversion, error)
	GetByTransactionID(accountID uint, transactionID string) (*models.Conversion, error)
	UpdateStatus(id uint, status string) error
	CreateItems(items []models.ConversionItem) error
	CreateEvent(event *models.ConversionEvent) error
	ListUnattributed(accountID uint, offset, limit int) ([]models.Conversion, error)
	CountByAccount(accountID uint) (int64, error)
}

// WebhookLogRepository defines the interface for request-outcome audit rows
type WebhookLogRepository interface {
	Create(logEntry *models.WebhookLog) error
	Update(logEntry *models.WebhookLog) error
	GetByID(id uint) (*models.WebhookLog, error)
	ListByAccount(accountID uint, offset, limit int) ([]models.WebhookLog, error)
	ListByWebhook(webhookID uint, offset, limit int) ([]models.WebhookLog, error)
}

// LeadRepository defines the interface for CRM lead upserts
type LeadRepository interface {
	Upsert(lead *models.Lead) error
	GetByAccountAndEmail(accountID uint, email string) (*models.Lead, error)
	ListByAccount(accountID uint, offset, limit int) ([]models.Lead, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Account    AccountRepository
	Webhook    WebhookRepository
	Project    ProjectRepository
	SmartLink  SmartLinkRepository
	Click      ClickRepository
	Conversion ConversionRepository
	WebhookLog WebhookLogRepository
	Lead       LeadRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:    NewAccountRepository(db),
		Webhook:    NewWebhookRepository(db),
		Project:    NewProjectRepository(db),
		SmartLink:  NewSmartLinkRepository(db),
		Click:      NewClickRepository(db),
		Conversion: NewConversionRepository(db),
		WebhookLog: NewWebhookLogRepository(db),
		Lead:       NewLeadRepository(db),
	}
}
