package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/middleware"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/shortener"
)

const slugGenerationAttempts = 5

// SmartLinkController serves the operator CRUD API for smart links.
type SmartLinkController struct {
	smartLinks repository.SmartLinkRepository
}

func NewSmartLinkController(smartLinks repository.SmartLinkRepository) *SmartLinkController {
	return &SmartLinkController{smartLinks: smartLinks}
}

type createSmartLinkRequest struct {
	Name      string `json:"name"`
	ProjectID *uint  `json:"project_id"`
	Variants  []struct {
		Name           string `json:"name"`
		DestinationURL string `json:"destination_url"`
		Weight         uint   `json:"weight"`
	} `json:"variants"`
}

// HandleCreate processes POST /api/v1/smartlinks.
func (sc *SmartLinkController) HandleCreate(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	var req createSmartLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if len(req.Variants) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "At least one variant is required"})
	}

	link := &models.SmartLink{
		AccountID: accountID,
		ProjectID: req.ProjectID,
		Name:      req.Name,
		IsActive:  true,
	}
	for _, v := range req.Variants {
		weight := v.Weight
		if weight == 0 {
			weight = 1
		}
		link.Variants = append(link.Variants, models.SmartLinkVariant{
			Name:           v.Name,
			DestinationURL: v.DestinationURL,
			Weight:         weight,
			IsActive:       true,
		})
	}

	slug, err := sc.uniqueSlug()
	if err != nil {
		log.Errorf("[SmartLink] Slug generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not generate slug"})
	}
	link.Slug = slug

	if err := link.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if err := sc.smartLinks.Create(link); err != nil {
		log.Errorf("[SmartLink] Create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not create smart link"})
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// HandleList processes GET /api/v1/smartlinks.
func (sc *SmartLinkController) HandleList(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account context"})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	links, err := sc.smartLinks.ListByAccount(accountID, offset, limit)
	if err != nil {
		log.Errorf("[SmartLink] List failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not list smart links"})
	}
	return c.JSON(fiber.Map{"smart_links": links, "offset": offset, "limit": limit})
}

// HandleGet processes GET /api/v1/smartlinks/:id.
func (sc *SmartLinkController) HandleGet(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid id"})
	}

	link, err := sc.smartLinks.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Smart link not found"})
		}
		log.Errorf("[SmartLink] Get failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error", "message": "Could not load smart link"})
	}
	// Do not leak existence across accounts
	if link.AccountID != accountID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Smart link not found"})
	}
	return c.JSON(link)
}

func (sc *SmartLinkController) uniqueSlug() (string, error) {
	for i := 0; i < slugGenerationAttempts; i++ {
		slug, err := shortener.GenerateSecureSlug(shortener.DefaultSlugLength)
		if err != nil {
			return "", err
		}
		exists, err := sc.smartLinks.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", errors.New("slug space exhausted after retries")
}
