package controllers

import (
	"errors"
	"math/rand"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RodrigoFalk/LinkPulse/app/models"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/metrics/counter"
)

// utmPassthrough lists the query parameters copied from the redirect
// request onto the click record and the destination URL.
var utmPassthrough = []string{"utm_source", "utm_medium", "utm_campaign", "utm_content"}

// RedirectController serves the public smart-link redirect. Each hit writes
// a click row and forwards the visitor with a fresh click id appended, so a
// later sale can be matched back to this exact visit.
type RedirectController struct {
	smartLinks repository.SmartLinkRepository
	clicks     repository.ClickRepository
	// CountClicks toggles the Redis click counters; off in tests.
	CountClicks bool
}

func NewRedirectController(smartLinks repository.SmartLinkRepository, clicks repository.ClickRepository) *RedirectController {
	return &RedirectController{
		smartLinks:  smartLinks,
		clicks:      clicks,
		CountClicks: true,
	}
}

// HandleRedirect processes GET /l/:slug.
func (rc *RedirectController) HandleRedirect(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Status(fiber.StatusNotFound).SendString("Not found")
	}

	link, err := rc.smartLinks.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Not found")
		}
		log.Errorf("[Redirect] Lookup failed for %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal error")
	}
	if !link.IsActive {
		return c.Status(fiber.StatusGone).SendString("Link disabled")
	}

	variant := pickVariant(link.Variants)
	if variant == nil {
		return c.Status(fiber.StatusGone).SendString("Link has no destination")
	}

	clickID := "clk_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	click := &models.Click{
		ClickID:     clickID,
		SmartLinkID: link.ID,
		VariantID:   variant.ID,
		AccountID:   link.AccountID,
		ProjectID:   link.ProjectID,
		UTMSource:   c.Query("utm_source"),
		UTMMedium:   c.Query("utm_medium"),
		UTMCampaign: c.Query("utm_campaign"),
		UTMContent:  c.Query("utm_content"),
		UTMTerm:     clickID,
		IP:          GetClientIP(c),
		UserAgent:   c.Get("User-Agent"),
		Referrer:    c.Get("Referer"),
	}
	if err := rc.clicks.Create(click); err != nil {
		// The visitor still gets forwarded; only attribution is lost.
		log.Errorf("[Redirect] Failed to record click %s: %v", clickID, err)
	}

	if rc.CountClicks {
		if err := counter.AddLinkClick(link.ID); err != nil {
			log.Errorf("[Redirect] Click counter failed for link %d: %v", link.ID, err)
		}
		if err := counter.AddVariantClick(variant.ID); err != nil {
			log.Errorf("[Redirect] Click counter failed for variant %d: %v", variant.ID, err)
		}
	}

	return c.Redirect(buildDestination(variant.DestinationURL, clickID, c), fiber.StatusFound)
}

// pickVariant chooses an active variant weighted by its Weight field.
func pickVariant(variants []models.SmartLinkVariant) *models.SmartLinkVariant {
	var total uint
	for i := range variants {
		if variants[i].IsActive {
			total += variants[i].Weight
		}
	}
	if total == 0 {
		return nil
	}

	n := uint(rand.Intn(int(total)))
	for i := range variants {
		if !variants[i].IsActive {
			continue
		}
		if n < variants[i].Weight {
			return &variants[i]
		}
		n -= variants[i].Weight
	}
	return nil
}

// buildDestination appends the click id and the surviving UTM parameters to
// the destination URL. The click id rides in both click_id and utm_term:
// some checkout platforms strip unknown query parameters but pass standard
// UTM parameters through, so utm_term doubles as the attribution carrier.
func buildDestination(destination, clickID string, c *fiber.Ctx) string {
	u, err := url.Parse(destination)
	if err != nil {
		return destination
	}

	q := u.Query()
	q.Set("click_id", clickID)
	q.Set("utm_term", clickID)
	for _, param := range utmPassthrough {
		if v := c.Query(param); v != "" && q.Get(param) == "" {
			q.Set(param, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
