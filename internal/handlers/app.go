package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"warehouse/internal/middleware"
	"warehouse/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the Fiber app serving the product API under /api/v1.
func NewApp(service *services.InventoryService, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "warehouse",
		DisableStartupMessage: true,
		JSONDecoder:           decodeJSON,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")
	NewProductHandler(service, logger).RegisterRoutes(apiV1)

	return app
}

// decodeJSON keeps numbers as json.Number so integers beyond 2^53 reach
// validation intact.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
