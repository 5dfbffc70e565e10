package router

import (
	"ticketops-web/internal/config"
	"ticketops-web/internal/handler"
	"ticketops-web/internal/middleware"
	"ticketops-web/internal/repository"
	"ticketops-web/internal/service"
	"ticketops-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	cardRepo := repository.NewCardRepository(db)
	eventRepo := repository.NewEventRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	listingRepo := repository.NewListingRepository(db)
	generatorRepo := repository.NewGeneratorRepository(db)
	importRepo := repository.NewImportRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	poService := service.NewPOService(purchaseRepo)
	importService := service.NewImportService(
		accountRepo, eventRepo, cardRepo, purchaseRepo, importRepo,
		poService, cfg.CADToUSDRate, utils.GetLogger(),
	)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountRepo)
	cardHandler := handler.NewCardHandler(cardRepo, accountRepo)
	eventHandler := handler.NewEventHandler(eventRepo)
	purchaseHandler := handler.NewPurchaseHandler(purchaseRepo)
	listingHandler := handler.NewListingHandler(listingRepo, purchaseRepo)
	generatorHandler := handler.NewGeneratorHandler(generatorRepo, redis, cfg)
	importHandler := handler.NewImportHandler(importRepo, purchaseRepo, importService, asynqClient, redis, cfg)
	dashboardHandler := handler.NewDashboardHandler(purchaseRepo, accountRepo, generatorRepo, importRepo, cfg)
	posHandler := handler.NewPOSHandler(asynqClient)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Generator workers run headless and do not carry user JWTs; their
	// register/heartbeat endpoints sit outside the auth group.
	generatorsPublic := router.Group("/generators")
	generatorsPublic.Post("/register", generatorHandler.RegisterGenerator)
	generatorsPublic.Post("/heartbeat", generatorHandler.Heartbeat)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Auth routes
	protected.Get("/auth/me", authHandler.Me)

	// Dashboard routes
	protected.Get("/dashboard/stats", dashboardHandler.GetStats)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.Get("/", accountHandler.GetAccounts)
	accounts.Post("/bulk-status", accountHandler.BulkUpdateStatus)
	accounts.Get("/:id", accountHandler.GetAccount)
	accounts.Post("/", accountHandler.CreateAccount)
	accounts.Put("/:id", accountHandler.UpdateAccount)
	accounts.Delete("/:id", accountHandler.DeleteAccount)

	// Card routes
	cards := protected.Group("/cards")
	cards.Get("/", cardHandler.GetCards)
	cards.Get("/:id", cardHandler.GetCard)
	cards.Post("/", cardHandler.CreateCard)
	cards.Put("/:id", cardHandler.UpdateCard)
	cards.Post("/:id/link", cardHandler.LinkCard)
	cards.Delete("/:id", cardHandler.DeleteCard)

	// Event routes
	events := protected.Group("/events")
	events.Get("/", eventHandler.GetEvents)
	events.Post("/sync", eventHandler.SyncEvents)
	events.Get("/:id", eventHandler.GetEvent)
	events.Post("/", eventHandler.CreateEvent)
	events.Put("/:id", eventHandler.UpdateEvent)
	events.Delete("/:id", eventHandler.DeleteEvent)

	// Purchase routes
	purchases := protected.Group("/purchases")
	purchases.Get("/", purchaseHandler.GetPurchases)
	purchases.Get("/export", purchaseHandler.ExportPurchases)
	purchases.Post("/bulk-status", purchaseHandler.BulkUpdateStatus)
	purchases.Get("/:id", purchaseHandler.GetPurchase)
	purchases.Post("/", purchaseHandler.CreatePurchase)
	purchases.Put("/:id", purchaseHandler.UpdatePurchase)
	purchases.Delete("/:id", purchaseHandler.DeletePurchase)

	// Listing routes
	listings := protected.Group("/listings")
	listings.Get("/", listingHandler.GetListings)
	listings.Post("/bulk-status", listingHandler.BulkUpdateStatus)
	listings.Get("/:id", listingHandler.GetListing)
	listings.Post("/", listingHandler.CreateListing)
	listings.Put("/:id", listingHandler.UpdateListing)
	listings.Delete("/:id", listingHandler.DeleteListing)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.Get("/", listingHandler.GetInvoices)
	invoices.Get("/export", listingHandler.ExportInvoices)
	invoices.Post("/", listingHandler.CreateInvoice)
	invoices.Put("/:id/status", listingHandler.UpdateInvoiceStatus)

	// Generator control routes (operator-facing)
	generators := protected.Group("/generators")
	generators.Get("/", generatorHandler.GetGenerators)
	generators.Post("/:id/pause", generatorHandler.PauseGenerator)
	generators.Post("/:id/resume", generatorHandler.ResumeGenerator)
	generators.Delete("/:id", generatorHandler.DeleteGenerator)

	// POS sync trigger
	protected.Post("/pos/sync", posHandler.TriggerSync)

	// Import routes
	imports := protected.Group("/imports")
	imports.Post("/", importHandler.UploadReceipts)
	imports.Post("/async", importHandler.UploadReceiptsAsync)
	imports.Get("/", importHandler.GetSessions)
	imports.Get("/conflicts", importHandler.GetConflicts)
	imports.Post("/conflicts/:id/resolve", importHandler.ResolveConflict)
	imports.Get("/:id", importHandler.GetSessionDetail)
	imports.Get("/:id/progress", importHandler.GetProgress)
}
