package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RodrigoFalk/LinkPulse/app/controllers"
	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/constants"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/ingest"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/leadqueue"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	repos := repository.GetGlobalRepositories()

	// Lead upserts run on background workers so the webhook answer never
	// waits on the CRM write.
	leads := leadqueue.NewQueue(repos.Lead, 2)
	leads.Start()

	webhookCtrl := controllers.NewWebhookController(ingest.NewService(repos, leads))
	redirectCtrl := controllers.NewRedirectController(repos.SmartLink, repos.Click)

	// Public sale ingestion
	app.Post(constants.WebhookRoute, webhookCtrl.HandleInbound)
	app.Options(constants.WebhookRoute, webhookCtrl.HandleInboundOptions)

	// Public smart-link redirect
	app.Get(constants.RedirectRoute, redirectCtrl.HandleRedirect)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
