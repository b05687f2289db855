package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp wires middleware and routes around the analyze handler.
func NewApp(h *AnalyzeHandler, bodyLimit int64, requestLogging bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Analyzer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		// multipart overhead on top of the file itself
		BodyLimit:    int(bodyLimit) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	if requestLogging {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Get("/", h.HandleIndex)
	app.Post("/analyze", h.HandleSubmit)
	app.Get("/report", h.HandleDownload)
	app.Post("/reset", h.HandleReset)

	api := app.Group("/api/v1", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Post("/analyze", h.HandleAPIAnalyze)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
