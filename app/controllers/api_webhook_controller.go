package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/middleware"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/security"
)

// WebhookAdminController serves the operator API for webhook identities and
// their request logs.
type WebhookAdminController struct {
	webhooks repository.WebhookRepository
	logs     repository.WebhookLogRepository
}

func NewWebhookAdminController(webhooks repository.WebhookRepository, logs repository.WebhookLogRepository) *WebhookAdminController {
	return &WebhookAdminController{webhooks: webhooks, logs: logs}
}

type createWebhookRequest struct {
	Name      string `json:"name"`
	ProjectID *uint  `json:"project_id"`
	Platform  string `json:"platform"`
}

// HandleCreate processes POST /api/v1/webhooks. The response carries the
// full inbound URL path once; the token is never listed again.
func (wc *WebhookAdminController) HandleCreate(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	var req createWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if req.Platform == "" {
		req.Platform = models.PlatformAuto
	}

	token, err := security.GenerateWebhookToken()
	if err != nil {
		log.Errorf("[WebhookAdmin] Token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not generate token"})
	}

	webhook := &models.Webhook{
		AccountID: accountID,
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Token:     token,
		Platform:  req.Platform,
		IsActive:  true,
	}
	if err := webhook.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := wc.webhooks.Create(webhook); err != nil {
		log.Errorf("[WebhookAdmin] Create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not create webhook"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"webhook": webhook,
		"url":     "/webhook/" + token,
	})
}

// HandleList processes GET /api/v1/webhooks.
func (wc *WebhookAdminController) HandleList(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	webhooks, err := wc.webhooks.ListByAccount(accountID, offset, limit)
	if err != nil {
		log.Errorf("[WebhookAdmin] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not list webhooks"})
	}
	return c.JSON(fiber.Map{"webhooks": webhooks, "offset": offset, "limit": limit})
}

// HandleListLogs processes GET /api/v1/webhook-logs, optionally filtered to
// one webhook by ?webhook_id=.
func (wc *WebhookAdminController) HandleListLogs(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	if webhookID := c.QueryInt("webhook_id", 0); webhookID > 0 {
		webhook, err := wc.webhooks.GetByID(uint(webhookID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Webhook not found"})
			}
			log.Errorf("[WebhookAdmin] Webhook lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not load webhook"})
		}
		if webhook.AccountID != accountID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Webhook not found"})
		}
		logs, err := wc.logs.ListByWebhook(webhook.ID, offset, limit)
		if err != nil {
			log.Errorf("[WebhookAdmin] Log list failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not list logs"})
		}
		return c.JSON(fiber.Map{"logs": logs, "offset": offset, "limit": limit})
	}

	logs, err := wc.logs.ListByAccount(accountID, offset, limit)
	if err != nil {
		log.Errorf("[WebhookAdmin] Log list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not list logs"})
	}
	return c.JSON(fiber.Map{"logs": logs, "offset": offset, "limit": limit})
}
