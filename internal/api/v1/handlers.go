package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/RodrigoFalk/LinkPulse/app/controllers"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
)

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer wires the operator API handlers.
type APIServer struct {
	smartLinks  *controllers.SmartLinkController
	webhooks    *controllers.WebhookAdminController
	conversions *controllers.ConversionController
}

// NewAPIServer creates a new API server instance backed by the global
// repositories.
func NewAPIServer() *APIServer {
	repos := repository.GetGlobalRepositories()
	return &APIServer{
		smartLinks:  controllers.NewSmartLinkController(repos.SmartLink),
		webhooks:    controllers.NewWebhookAdminController(repos.Webhook, repos.WebhookLog),
		conversions: controllers.NewConversionController(repos.Conversion),
	}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// RegisterHandlers attaches the v1 routes. Everything except ping requires
// an account API key, enforced by the authed middleware.
func RegisterHandlers(router fiber.Router, s *APIServer, authed fiber.Handler) {
	router.Get("/ping", s.GetPing)

	v1 := router.Group("", authed)
	v1.Post("/smartlinks", s.smartLinks.HandleCreate)
	v1.Get("/smartlinks", s.smartLinks.HandleList)
	v1.Get("/smartlinks/:id", s.smartLinks.HandleGet)

	v1.Post("/webhooks", s.webhooks.HandleCreate)
	v1.Get("/webhooks", s.webhooks.HandleList)
	v1.Get("/webhook-logs", s.webhooks.HandleListLogs)

	v1.Get("/conversions/unattributed", s.conversions.HandleListUnattributed)
	v1.Get("/conversions/:id", s.conversions.HandleGet)
}
