package handler

import (
	"go-resto-ops/internal/middleware"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Inventory *InventoryHandler
	Orders    *OrderHandler
	Team      *TeamHandler
	Dashboard *DashboardHandler
	Reports   *ReportHandler
}

// Register mounts the public auth routes and the protected API on app.
func Register(app *fiber.App, auth service.AuthService, h Handlers) {
	can := middleware.RequireCapability
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(auth))
	protected.Post("/auth/change-password", h.Auth.ChangePassword)
	protected.Get("/me", h.Team.Me)

	// Dashboard
	protected.Get("/dashboard/stats", can(model.ActionDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.ActionDashboardView), h.Dashboard.GetStockMovement)

	// Products
	protected.Get("/products", can(model.ActionProductView), h.Products.GetProducts)
	protected.Get("/products/:id", can(model.ActionProductView), h.Products.GetProduct)
	protected.Get("/products/:id/transactions", can(model.ActionInventoryView), h.Products.GetProductHistory)
	protected.Post("/products", can(model.ActionProductCreate), h.Products.CreateProduct)
	protected.Put("/products/:id", can(model.ActionProductUpdate), h.Products.UpdateProduct)
	protected.Post("/products/:id/activate", can(model.ActionProductUpdate), h.Products.ActivateProduct)
	protected.Post("/products/:id/deactivate", can(model.ActionProductUpdate), h.Products.DeactivateProduct)

	// Inventory ledger
	protected.Get("/inventory/low-stock", can(model.ActionInventoryView), h.Inventory.GetLowStock)
	protected.Get("/inventory/transactions", can(model.ActionInventoryView), h.Inventory.GetTransactions)
	protected.Get("/inventory/transactions/:id", can(model.ActionInventoryView), h.Inventory.GetTransaction)
	protected.Post("/inventory/transactions", can(model.ActionInventoryAdjust), h.Inventory.CreateAdjustment)

	// Orders
	protected.Get("/orders", can(model.ActionOrderView), h.Orders.GetOrders)
	protected.Get("/orders/:id", can(model.ActionOrderView), h.Orders.GetOrder)
	protected.Post("/orders", can(model.ActionOrderCreate), h.Orders.CreateOrder)
	protected.Patch("/orders/:id/status", can(model.ActionOrderUpdateStatus), h.Orders.UpdateStatus)
	protected.Patch("/orders/:id/assign", can(model.ActionOrderUpdateStatus), h.Orders.Assign)

	// Team
	protected.Get("/team", can(model.ActionTeamView), h.Team.GetProfiles)
	protected.Get("/team/:id", h.Team.GetProfile)
	protected.Post("/team", can(model.ActionTeamManage), h.Team.CreateProfile)
	protected.Patch("/team/:id/active", can(model.ActionTeamManage), h.Team.SetActive)

	// Reports
	protected.Get("/reports", can(model.ActionReportGenerate), h.Reports.Download)
}
