package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/growlify/growlify-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Category    *CategoryHandler
	Transaction *TransactionHandler
	Report      *ReportHandler
	Calculator  *CalculatorHandler
	WebSocket   *WebSocketHandler
}

// RouteOptions holds the optional middleware stacks. Protected runs after
// authentication on every session route; Calculator additionally runs on the
// calculator group (the subscription gate when enabled).
type RouteOptions struct {
	Protected  []echo.MiddlewareFunc
	Calculator []echo.MiddlewareFunc
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, h Handlers, opts RouteOptions) {
	e.GET("/", h.Health.Root)
	e.GET("/health", h.Health.Health)

	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	protected := append([]echo.MiddlewareFunc{authMiddleware.Authenticate()}, opts.Protected...)

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password", h.Auth.ResetPassword)
	auth.GET("/me", h.Auth.Me, protected...)

	// Category routes (protected)
	categories := api.Group("/categories", protected...)
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	// Transaction routes (protected)
	transactions := api.Group("/transactions", protected...)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Report routes (protected)
	reports := api.Group("/reports", protected...)
	reports.GET("/summary", h.Report.GetSummary)
	reports.GET("/export.csv", h.Report.ExportCSV)
	reports.POST("/export/archive", h.Report.ArchiveExport)

	// Calculator routes (protected, optionally subscription gated)
	calculatorStack := append(append([]echo.MiddlewareFunc{}, protected...), opts.Calculator...)
	calculator := api.Group("/calculator", calculatorStack...)
	calculator.POST("/run", h.Calculator.Run)
	calculator.POST("/run-and-save", h.Calculator.RunAndSave)
	calculator.GET("/saved", h.Calculator.GetSaved)
	calculator.DELETE("/saved/:id", h.Calculator.DeleteSaved)
}
