package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/RodrigoFalk/LinkPulse/internal/pkg/ingest"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/payload"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/ratelimit"
)

// ReprocessLogHeader addresses an existing webhook log row; when present the
// run rewrites that row instead of appending a new one.
const ReprocessLogHeader = "X-Reprocess-Log-Id"

// WebhookController serves the public sale-ingestion endpoint. RateAllow is
// swappable for tests; it defaults to the shared Redis limiter.
type WebhookController struct {
	service   *ingest.Service
	RateAllow func(ip string) bool
}

func NewWebhookController(service *ingest.Service) *WebhookController {
	return &WebhookController{
		service:   service,
		RateAllow: ratelimit.Allow,
	}
}

// HandleInbound processes POST /webhook/:token. Everything past identity
// resolution answers 200 so checkout platforms do not retry payloads a
// retry cannot fix; the webhook log carries the real outcome.
func (wc *WebhookController) HandleInbound(c *fiber.Ctx) error {
	ip := GetClientIP(c)
	if !wc.RateAllow(ip) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "rate_limited", "message": "Too many requests",
		})
	}

	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing_token", "message": "Webhook token missing",
		})
	}

	// Content-Length first, then the bytes actually read, so a missing or
	// lying header does not bypass the limit.
	if err := payload.CheckSize(c.Request().Header.ContentLength()); err != nil {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "payload_too_large", "message": err.Error(),
		})
	}
	body := c.Body()
	if err := payload.CheckSize(len(body)); err != nil {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "payload_too_large", "message": err.Error(),
		})
	}

	obj, err := payload.Decode(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_payload", "message": err.Error(),
		})
	}
	if err := payload.CheckComplexity(obj); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_payload", "message": err.Error(),
		})
	}

	var reprocessLogID uint
	if raw := c.Get(ReprocessLogHeader); raw != "" {
		id, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_header", "message": "Invalid reprocess log id",
			})
		}
		reprocessLogID = uint(id)
	}

	// Body bytes must be copied out: fiber reuses the buffer after the
	// handler returns and the raw payload outlives the request.
	rawBody := make([]byte, len(body))
	copy(rawBody, body)

	result, err := wc.service.Process(token, rawBody, obj, reprocessLogID)
	if err != nil {
		log.Errorf("[Webhook] Processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error", "message": "Webhook processing failed",
		})
	}

	switch result.Decision {
	case ingest.DecisionUnknownToken:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "invalid_token", "message": "Unknown webhook token",
		})
	case ingest.DecisionInactiveWebhook:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "webhook_inactive", "message": "Webhook is disabled",
		})
	case ingest.DecisionSkippedProject:
		return c.JSON(fiber.Map{"ok": true, "skipped": "project_inactive"})
	default:
		return c.JSON(fiber.Map{"ok": true, "status": result.LogStatus})
	}
}

// HandleInboundOptions answers CORS preflights from platform test consoles.
func (wc *WebhookController) HandleInboundOptions(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type, "+ReprocessLogHeader)
	return c.SendStatus(fiber.StatusNoContent)
}
