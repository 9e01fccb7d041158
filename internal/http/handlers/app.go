package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"stockhub/internal/config"
	applog "stockhub/internal/log"
	"stockhub/web"
)

// NewApp builds the Fiber application with middleware and every route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	engine := html.NewFileSystem(web.Templates(), ".html")

	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20 // 1 MiB
	}
	app := fiber.New(fiber.Config{
		AppName:      "stockhub",
		Views:        engine,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(applog.AccessLog())
	app.Use(helmet.New())
	app.Use(cors.New())
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}

	// ---------- API ----------
	api := app.Group("/api")

	inv := deps.InventoryHandler
	api.Post("/inventory/transfer", inv.Transfer)
	api.Get("/inventory/alerts", inv.LowStock)
	api.Get("/movements", inv.Movements)

	api.Get("/stores/:storeId/inventory", inv.StoreInventory)
	api.Put("/stores/:storeId/inventory/:productId/minstock", inv.SetMinStock)
	api.Post("/stores/:storeId/inventory/:productId/receive", inv.Receive)
	api.Post("/stores/:storeId/inventory/:productId/issue", inv.Issue)

	api.Get("/products", deps.ProductHandler.List)
	api.Post("/products", deps.ProductHandler.Create)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Put("/products/:id", deps.ProductHandler.Update)
	api.Delete("/products/:id", deps.ProductHandler.Delete)

	api.Get("/stores", deps.StoreHandler.List)
	api.Post("/stores", deps.StoreHandler.Create)
	api.Get("/stores/:id", deps.StoreHandler.Get)
	api.Put("/stores/:id", deps.StoreHandler.Update)
	api.Delete("/stores/:id", deps.StoreHandler.Delete)

	// ---------- Pages ----------
	app.Get("/reports/low-stock", inv.Report)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found."})
	})

	return app
}
