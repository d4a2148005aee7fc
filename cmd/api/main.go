package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"eps-procurement/internal/handler"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"
	"eps-procurement/internal/service"
	"eps-procurement/internal/ws"
	"eps-procurement/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.SKU{},
		&model.PriceHistory{},
		&model.Requirement{},
		&model.Configuration{},
		&model.ConfigurationItem{},
		&model.EPSOrder{},
		&model.EPSOrderItem{},
		&model.BudgetAllocation{},
	)

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	skuRepo := repository.NewSKURepo(db)
	requirementRepo := repository.NewRequirementRepo(db)
	configRepo := repository.NewConfigurationRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	statsRepo := repository.NewStatisticsRepo(db)

	skuService := service.NewSKUService(skuRepo, db, wsHub)
	requirementService := service.NewRequirementService(requirementRepo, configRepo, orderRepo, skuRepo, db)
	orderService := service.NewOrderService(orderRepo, requirementRepo, configRepo, skuRepo, db, wsHub)
	integrityService := service.NewIntegrityService(requirementRepo, configRepo, orderRepo, skuRepo, db, wsHub)
	pricingService := service.NewPricingService(skuRepo)
	statsService := service.NewStatisticsService(statsRepo)

	skuHandler := handler.NewSKUHandler(skuService)
	requirementHandler := handler.NewRequirementHandler(requirementService, integrityService)
	orderHandler := handler.NewOrderHandler(orderService, integrityService)
	pricingHandler := handler.NewPricingHandler(pricingService, requirementService)
	statsHandler := handler.NewStatisticsHandler(statsService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "EPS Procurement v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// SKU Routes
	api.Post("/skus", skuHandler.CreateSKU)
	api.Get("/skus", skuHandler.GetSKUs)
	api.Get("/skus/code/:code", skuHandler.GetSKUByCode)
	api.Get("/skus/:id", skuHandler.GetSKU)
	api.Put("/skus/:id", skuHandler.UpdateSKU)
	api.Delete("/skus/:id", skuHandler.DeleteSKU)
	api.Get("/skus/:id/price-history", skuHandler.GetPriceHistory)

	// Requirement Routes
	api.Post("/requirements", requirementHandler.CreateRequirement)
	api.Get("/requirements", requirementHandler.GetRequirements)
	api.Get("/requirements/code/:code", requirementHandler.GetRequirementByCode)
	api.Get("/jira/:case/requirements", requirementHandler.GetRequirementsByJiraCase)
	api.Get("/requirements/:id", requirementHandler.GetRequirement)
	api.Put("/requirements/:id", requirementHandler.UpdateRequirement)
	api.Delete("/requirements/:id", requirementHandler.DeleteRequirement)
	api.Get("/requirements/:id/dependencies", requirementHandler.CheckDependencies)
	api.Get("/requirements/:id/consistency", requirementHandler.VerifyConsistency)
	api.Post("/requirements/:id/split", orderHandler.SplitRequirement)

	// Configuration Routes
	api.Post("/requirements/:id/configurations", requirementHandler.CreateConfiguration)
	api.Get("/requirements/:id/configurations", requirementHandler.GetConfigurations)
	api.Get("/configurations/:id", requirementHandler.GetConfiguration)
	api.Post("/configurations/:id/items", requirementHandler.AddConfigurationItem)
	api.Delete("/configuration-items/:id", requirementHandler.RemoveConfigurationItem)
	api.Get("/configurations/:id/price-check", pricingHandler.CheckConfigurationPrice)

	// Pricing Routes
	api.Post("/pricing/quote", pricingHandler.Quote)

	// Order Routes
	api.Get("/orders", orderHandler.GetOrders)
	api.Get("/orders/code/:code", orderHandler.GetOrderByCode)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Put("/orders/:id", orderHandler.UpdateOrder)
	api.Delete("/orders/:id", orderHandler.DeleteOrder)
	api.Get("/orders/:id/consistency", orderHandler.VerifyConsistency)
	api.Put("/orders/:id/budget-allocations", orderHandler.SetBudgetAllocations)
	api.Get("/orders/:id/budget-allocations", orderHandler.GetBudgetAllocations)

	// Budget Routes
	api.Get("/budgets/:code/total", orderHandler.GetBudgetTotal)
	api.Get("/budgets/:code/orders", orderHandler.GetOrdersByBudget)

	// Statistics Routes
	api.Get("/statistics/suppliers", statsHandler.GetSupplierStatistics)
	api.Get("/statistics/budgets", statsHandler.GetBudgetStatistics)
	api.Get("/statistics/skus", statsHandler.GetSKUStatistics)
	api.Post("/statistics/import", statsHandler.ImportCSV)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
