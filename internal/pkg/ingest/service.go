package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/attribution"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/platform"
)

// Decision is the identity-level outcome of a webhook request; the
// controller maps it to an HTTP status. Everything past identity
// resolution responds 200 regardless of the log bucket, so upstream
// platforms never retry conditions a retry cannot fix.
type Decision int

const (
	DecisionProcessed Decision = iota
	DecisionSkippedProject
	DecisionUnknownToken
	DecisionInactiveWebhook
)

// LeadSink receives best-effort CRM upserts. Implementations must never
// block the caller on failure.
type LeadSink interface {
	Enqueue(lead *models.Lead)
}

// Service runs the sale normalization and attribution pipeline for one
// webhook request.
type Service struct {
	repos *repository.Repositories
	leads LeadSink
}

// NewService creates an ingest service from injected repositories.
func NewService(repos *repository.Repositories, leads LeadSink) *Service {
	return &Service{repos: repos, leads: leads}
}

// NewServiceFromDB creates an ingest service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, leads LeadSink) *Service {
	return NewService(repository.NewRepositories(db), leads)
}

// Result reports what the pipeline did with the request.
type Result struct {
	Decision  Decision
	LogStatus string // final bucket written to the webhook log, "" when none
}

// Process takes the resolved token, the raw body (for audit) and the
// decoded payload through identity resolution, normalization,
// classification, attribution and persistence. reprocessLogID, when
// non-zero, rewrites that existing log row instead of appending a new one.
func (s *Service) Process(token string, rawBody []byte, obj map[string]interface{}, reprocessLogID uint) (*Result, error) {
	webhook, err := s.repos.Webhook.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.writeLog(reprocessLogID, &models.WebhookLog{
				Platform:     models.PlatformUnknown,
				Status:       models.SaleStatusError,
				IgnoreReason: "Invalid webhook token",
				RawPayload:   models.JSON(rawBody),
			})
			return &Result{Decision: DecisionUnknownToken, LogStatus: models.SaleStatusError}, nil
		}
		return nil, err
	}

	if !webhook.IsActive {
		// No log here: logging would leak that the token exists.
		return &Result{Decision: DecisionInactiveWebhook}, nil
	}

	if webhook.ProjectID != nil {
		project, err := s.repos.Project.GetByID(*webhook.ProjectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if project != nil && !project.IsActive {
			// Deliberately paused project: soft-skip with no log so the
			// platform stops retrying without the operator's logs filling up.
			return &Result{Decision: DecisionSkippedProject}, nil
		}
	}

	linkedProducts, err := s.repos.Webhook.GetLinkedProductExternalIDs(webhook.ID)
	if err != nil {
		return nil, err
	}

	obj = platform.UnwrapData(obj)
	detected := platform.Detect(obj, webhook.Platform)

	sale, shapeID, ok := platform.Normalize(obj)
	if !ok {
		s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
			Status:       models.SaleStatusIgnored,
			IgnoreReason: "Unknown payload format",
		})
		return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusIgnored}, nil
	}
	if detected == models.PlatformUnknown {
		detected = shapeID
	}

	status := ClassifyStatus(sale.EventType, sale.RawStatus)
	sale.Truncate()

	if IsNegativeStatus(status) && sale.TransactionID != "" {
		return s.applyNegativeEvent(webhook, reprocessLogID, rawBody, detected, sale, status)
	}

	if status != models.SaleStatusApproved {
		s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
			Status:        models.SaleStatusIgnored,
			EventType:     sale.EventType,
			TransactionID: sale.TransactionID,
			IgnoreReason:  fmt.Sprintf("Unhandled event type: %s", sale.EventType),
		})
		return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusIgnored}, nil
	}

	if sale.TransactionID == "" {
		s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
			Status:       models.SaleStatusError,
			EventType:    sale.EventType,
			IgnoreReason: "Missing transaction id",
		})
		return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusError}, nil
	}

	if len(linkedProducts) > 0 && !containsString(linkedProducts, sale.ExternalProductID) {
		s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
			Status:        models.SaleStatusIgnored,
			EventType:     sale.EventType,
			TransactionID: sale.TransactionID,
			IgnoreReason:  fmt.Sprintf("Product not linked to webhook: %s", sale.ExternalProductID),
		})
		return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusIgnored}, nil
	}

	// Attribution runs even for duplicates so the duplicate log row shows
	// what attribution would have been.
	attr, err := attribution.Resolve(s.repos.Click, sale.ClickID, sale.FallbackTerm, webhook.AccountID)
	if err != nil {
		log.Printf("attribution lookup failed for transaction %s: %v", sale.TransactionID, err)
		attr = &attribution.Result{Attributed: false, Tier: attribution.TierNone}
	}

	existing, err := s.repos.Conversion.GetByTransactionID(webhook.AccountID, sale.TransactionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logDuplicate(webhook, reprocessLogID, rawBody, detected, sale, attr)
		return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusDuplicate}, nil
	}

	conversion, err := s.persistConversion(webhook, rawBody, detected, sale, attr)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			// Two near-simultaneous deliveries passed the pre-check; the
			// unique index caught the second one.
			s.logDuplicate(webhook, reprocessLogID, rawBody, detected, sale, attr)
			return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusDuplicate}, nil
		}
		return nil, err
	}

	s.enqueueLead(webhook, conversion, sale)

	logEntry := &models.WebhookLog{
		Status:        models.SaleStatusApproved,
		EventType:     sale.EventType,
		TransactionID: sale.TransactionID,
		SmartLinkID:   conversion.SmartLinkID,
		VariantID:     conversion.VariantID,
		IsAttributed:  conversion.IsAttributed,
	}
	s.logOutcome(webhook, reprocessLogID, rawBody, detected, logEntry)
	return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusApproved}, nil
}

// applyNegativeEvent updates the existing conversion's status in place and
// appends an audit event. Negative events never re-resolve attribution and
// never insert a second conversion row.
func (s *Service) applyNegativeEvent(webhook *models.Webhook, reprocessLogID uint, rawBody []byte, detected string, sale *platform.NormalizedSale, status string) (*Result, error) {
	existing, err := s.repos.Conversion.GetByTransactionID(webhook.AccountID, sale.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
				Status:        models.SaleStatusIgnored,
				EventType:     sale.EventType,
				TransactionID: sale.TransactionID,
				IgnoreReason:  fmt.Sprintf("No conversion found for transaction: %s", sale.TransactionID),
			})
			return &Result{Decision: DecisionProcessed, LogStatus: models.SaleStatusIgnored}, nil
		}
		return nil, err
	}

	if err := s.repos.Conversion.UpdateStatus(existing.ID, status); err != nil {
		return nil, err
	}
	if err := s.repos.Conversion.CreateEvent(&models.ConversionEvent{
		ConversionID: existing.ID,
		Status:       status,
		EventType:    sale.EventType,
	}); err != nil {
		log.Printf("failed to record conversion event for %d: %v", existing.ID, err)
	}

	s.logOutcome(webhook, reprocessLogID, rawBody, detected, &models.WebhookLog{
		Status:        status,
		EventType:     sale.EventType,
		TransactionID: sale.TransactionID,
		SmartLinkID:   existing.SmartLinkID,
		VariantID:     existing.VariantID,
		IsAttributed:  existing.IsAttributed,
	})
	return &Result{Decision: DecisionProcessed, LogStatus: status}, nil
}

func (s *Service) persistConversion(webhook *models.Webhook, rawBody []byte, detected string, sale *platform.NormalizedSale, attr *attribution.Result) (*models.Conversion, error) {
	paidAt := sale.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	conversion := &models.Conversion{
		AccountID:         webhook.AccountID,
		ProjectID:         webhook.ProjectID,
		WebhookID:         webhook.ID,
		TransactionID:     sale.TransactionID,
		RefID:             sale.RefID,
		Platform:          detected,
		Status:            models.SaleStatusApproved,
		EventType:         sale.EventType,
		Amount:            sale.Amount,
		BaseAmount:        sale.BaseAmount,
		Fees:              sale.Fees,
		NetAmount:         sale.NetAmount,
		Currency:          sale.Currency,
		ProductName:       sale.ProductName,
		ExternalProductID: sale.ExternalProductID,
		PaymentMethod:     sale.PaymentMethod,
		CustomerName:      sale.CustomerName,
		CustomerEmail:     sale.CustomerEmail,
		CustomerPhone:     sale.CustomerPhone,
		IsOrderBump:       sale.IsOrderBump,
		UTMSource:         sale.UTMSource,
		UTMMedium:         sale.UTMMedium,
		UTMCampaign:       sale.UTMCampaign,
		UTMContent:        sale.UTMContent,
		UTMTerm:           sale.UTMTerm,
		RawPayload:        models.JSON(rawBody),
		PaidAt:            paidAt,
	}

	if attr.Attributed && attr.Click != nil {
		conversion.IsAttributed = true
		conversion.AttributedClickID = attr.Click.ClickID
		conversion.SmartLinkID = &attr.Click.SmartLinkID
		conversion.VariantID = &attr.Click.VariantID
		if conversion.ProjectID == nil {
			conversion.ProjectID = attr.Click.ProjectID
		}
	}

	if err := s.repos.Conversion.Create(conversion); err != nil {
		return nil, err
	}

	items := []models.ConversionItem{{
		ConversionID: conversion.ID,
		Name:         sale.ProductName,
		Amount:       sale.Amount,
		Position:     0,
	}}
	for i, bump := range sale.OrderBumps {
		items = append(items, models.ConversionItem{
			ConversionID: conversion.ID,
			Name:         bump.Name,
			Amount:       bump.Amount,
			IsOrderBump:  true,
			Position:     i + 1,
		})
	}
	if err := s.repos.Conversion.CreateItems(items); err != nil {
		log.Printf("failed to create conversion items for %d: %v", conversion.ID, err)
	}

	if err := s.repos.Conversion.CreateEvent(&models.ConversionEvent{
		ConversionID: conversion.ID,
		Status:       models.SaleStatusApproved,
		EventType:    sale.EventType,
	}); err != nil {
		log.Printf("failed to record conversion event for %d: %v", conversion.ID, err)
	}

	return conversion, nil
}

// enqueueLead hands the CRM upsert to the lead sink. Best-effort: a sale
// without an email is skipped and a sink failure never surfaces.
func (s *Service) enqueueLead(webhook *models.Webhook, conversion *models.Conversion, sale *platform.NormalizedSale) {
	if s.leads == nil || sale.CustomerEmail == "" {
		return
	}
	s.leads.Enqueue(&models.Lead{
		AccountID:     webhook.AccountID,
		ProjectID:     conversion.ProjectID,
		Name:          sale.CustomerName,
		Email:         sale.CustomerEmail,
		Phone:         sale.CustomerPhone,
		Source:        conversion.Platform,
		Amount:        sale.Amount,
		ConversionID:  &conversion.ID,
		ProductName:   sale.ProductName,
		Status:        conversion.Status,
		PaymentMethod: sale.PaymentMethod,
		UTMSource:     sale.UTMSource,
		UTMMedium:     sale.UTMMedium,
		UTMCampaign:   sale.UTMCampaign,
		UTMContent:    sale.UTMContent,
		UTMTerm:       sale.UTMTerm,
	})
}

func (s *Service) logDuplicate(webhook *models.Webhook, reprocessLogID uint, rawBody []byte, detected string, sale *platform.NormalizedSale, attr *attribution.Result) {
	logEntry := &models.WebhookLog{
		Status:        models.SaleStatusDuplicate,
		EventType:     sale.EventType,
		TransactionID: sale.TransactionID,
		IsAttributed:  attr.Attributed,
	}
	if attr.Attributed && attr.Click != nil {
		logEntry.SmartLinkID = &attr.Click.SmartLinkID
		logEntry.VariantID = &attr.Click.VariantID
	}
	s.logOutcome(webhook, reprocessLogID, rawBody, detected, logEntry)
}

// logOutcome attaches webhook identity to the entry and writes it.
func (s *Service) logOutcome(webhook *models.Webhook, reprocessLogID uint, rawBody []byte, detected string, entry *models.WebhookLog) {
	entry.AccountID = &webhook.AccountID
	entry.ProjectID = webhook.ProjectID
	entry.WebhookID = &webhook.ID
	entry.Platform = detected
	if entry.RawPayload == nil {
		entry.RawPayload = models.JSON(rawBody)
	}
	s.writeLog(reprocessLogID, entry)
}

// writeLog appends a new log row, or in reprocess mode rewrites the
// addressed row in place so a replay updates the original outcome instead
// of duplicating it.
func (s *Service) writeLog(reprocessLogID uint, entry *models.WebhookLog) {
	if reprocessLogID > 0 {
		existing, err := s.repos.WebhookLog.GetByID(reprocessLogID)
		if err == nil {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			if err := s.repos.WebhookLog.Update(entry); err != nil {
				log.Printf("failed to update webhook log %d: %v", reprocessLogID, err)
			}
			return
		}
		log.Printf("reprocess log %d not found, appending instead: %v", reprocessLogID, err)
	}
	if err := s.repos.WebhookLog.Create(entry); err != nil {
		log.Printf("failed to write webhook log: %v", err)
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s != "" && s == v {
			return true
		}
	}
	return false
}

// DecodeRaw is a convenience for reprocessing stored payloads.
func DecodeRaw(raw models.JSON) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
