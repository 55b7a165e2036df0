package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/tresoro/tresoro-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	budgetHandler *BudgetHandler,
	budgetCategoryHandler *BudgetCategoryHandler,
	transactionHandler *TransactionHandler,
	transactionCategoryHandler *TransactionCategoryHandler,
	receiptHandler *ReceiptHandler,
	wsHandler *WebSocketHandler,
) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/active", budgetHandler.GetActiveBudgets)
	budgets.GET("/near-expiry", budgetHandler.GetNearExpiryBudgets)
	budgets.GET("/over-threshold", budgetHandler.GetOverThresholdBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.POST("/:id/close", budgetHandler.CloseBudget)
	budgets.POST("/:id/suspend", budgetHandler.SuspendBudget)
	budgets.POST("/:id/reactivate", budgetHandler.ReactivateBudget)
	budgets.POST("/:id/renew", budgetHandler.RenewBudget)
	budgets.GET("/:id/categories", budgetCategoryHandler.GetCategoriesByBudget)

	// Budget category routes
	budgetCategories := api.Group("/budget-categories")
	budgetCategories.POST("", budgetCategoryHandler.CreateCategory)
	budgetCategories.GET("/:id", budgetCategoryHandler.GetCategory)
	budgetCategories.PUT("/:id", budgetCategoryHandler.UpdateCategory)
	budgetCategories.DELETE("/:id", budgetCategoryHandler.DeleteCategory)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/pending", transactionHandler.GetPendingTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/reference/:reference", transactionHandler.GetTransactionByReference)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/validate", transactionHandler.ValidateTransaction)
	transactions.POST("/:id/reject", transactionHandler.RejectTransaction)
	transactions.POST("/:id/cancel", transactionHandler.CancelTransaction)
	transactions.POST("/:id/receipt", receiptHandler.UploadReceipt)
	transactions.GET("/:id/receipt", receiptHandler.GetReceipt)
	transactions.DELETE("/:id/receipt", receiptHandler.DeleteReceipt)

	// Transaction classification routes
	transactionCategories := api.Group("/transaction-categories")
	transactionCategories.POST("", transactionCategoryHandler.CreateCategory)
	transactionCategories.GET("", transactionCategoryHandler.GetCategories)
	transactionCategories.GET("/:id", transactionCategoryHandler.GetCategory)
	transactionCategories.PUT("/:id", transactionCategoryHandler.UpdateCategory)
	transactionCategories.DELETE("/:id", transactionCategoryHandler.DeleteCategory)

	// WebSocket endpoint authenticates via query-param token, not the auth
	// middleware; browsers cannot set headers on upgrade requests
	e.GET("/ws", wsHandler.HandleWS)
}
