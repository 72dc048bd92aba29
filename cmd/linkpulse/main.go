package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/RodrigoFalk/LinkPulse/app/repository"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/cache"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/database"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/env"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/metrics/counter"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/payload"
	"github.com/RodrigoFalk/LinkPulse/internal/pkg/router"
)

func main() {
	app := NewApplication()

	stopFlusher := counter.StartFlusher(30 * time.Second)

	// Flush pending click counters on shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		stopFlusher()
		if err := counter.FlushAll(); err != nil {
			log.Printf("final counter flush failed: %v", err)
		}
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Find the project root; needed when started from cmd/linkpulse
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/linkpulse to project root
		"../../../", // Fallback
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app; the body limit is enforced again per request by the
	// payload guard, this is the transport-level backstop
	app := fiber.New(fiber.Config{
		AppName:   "LinkPulse",
		BodyLimit: payload.MaxBodyBytes * 2,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
