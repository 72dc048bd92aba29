package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a related group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// HttpRouter carries the public ingestion and redirect endpoints and
	// starts the lead queue workers. ApiRouter registers the key-protected
	// operator API on top.
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
