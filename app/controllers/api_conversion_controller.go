package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/middleware"
)

// ConversionController serves read access to persisted sales.
type ConversionController struct {
	conversions repository.ConversionRepository
}

func NewConversionController(conversions repository.ConversionRepository) *ConversionController {
	return &ConversionController{conversions: conversions}
}

// HandleGet processes GET /api/v1/conversions/:id.
func (cc *ConversionController) HandleGet(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid id"})
	}

	conversion, err := cc.conversions.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Conversion not found"})
		}
		log.Errorf("[Conversion] Get failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not load conversion"})
	}
	if conversion.AccountID != accountID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Conversion not found"})
	}
	return c.JSON(conversion)
}

// HandleListUnattributed processes GET /api/v1/conversions/unattributed:
// approved sales no attribution tier could match, surfaced for manual
// review.
func (cc *ConversionController) HandleListUnattributed(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	conversions, err := cc.conversions.ListUnattributed(accountID, offset, limit)
	if err != nil {
		log.Errorf("[Conversion] Unattributed list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not list conversions"})
	}

	total, err := cc.conversions.CountByAccount(accountID)
	if err != nil {
		log.Errorf("[Conversion] Count failed: %v", err)
		total = 0
	}

	return c.JSON(fiber.Map{
		"conversions": conversions,
		"total":       total,
		"offset":      offset,
		"limit":       limit,
	})
}
