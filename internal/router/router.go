package router

import (
	"ticketops-web/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Setup(app *fiber.App, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    cfg.AppName,
		})
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, redis, cfg)
}

func setupWebRoutes(router fiber.Router) {
	// Authentication pages
	router.Get("/login", func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		})
	})

	// Dashboard
	router.Get("/", func(c *fiber.Ctx) error {
		return c.Render("dashboard/index", fiber.Map{
			"Title": "Dashboard",
		})
	})

	// Master data pages
	router.Get("/accounts", func(c *fiber.Ctx) error {
		return c.Render("master/accounts", fiber.Map{
			"Title": "Accounts",
		})
	})

	router.Get("/cards", func(c *fiber.Ctx) error {
		return c.Render("master/cards", fiber.Map{
			"Title": "Cards",
		})
	})

	router.Get("/events", func(c *fiber.Ctx) error {
		return c.Render("master/events", fiber.Map{
			"Title": "Events",
		})
	})

	router.Get("/purchases", func(c *fiber.Ctx) error {
		return c.Render("purchases/index", fiber.Map{
			"Title": "Purchases",
		})
	})

	router.Get("/listings", func(c *fiber.Ctx) error {
		return c.Render("listings/index", fiber.Map{
			"Title": "Listings",
		})
	})

	router.Get("/generators", func(c *fiber.Ctx) error {
		return c.Render("generators/index", fiber.Map{
			"Title": "Generators",
		})
	})

	// Import pages
	router.Get("/imports", func(c *fiber.Ctx) error {
		return c.Render("imports/index", fiber.Map{
			"Title": "Import Sessions",
		})
	})

	router.Get("/imports/new", func(c *fiber.Ctx) error {
		return c.Render("imports/new", fiber.Map{
			"Title": "New Import",
		})
	})

	router.Get("/imports/:id", func(c *fiber.Ctx) error {
		return c.Render("imports/detail", fiber.Map{
			"Title": "Import Detail",
		})
	})
}
