package handler

import (
	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Auth         *AuthHandler
	Budget       *BudgetHandler
	Transaction  *TransactionHandler
	Notification *NotificationHandler
	Report       *ReportHandler
	Dashboard    *DashboardHandler
	Activity     *ActivityHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, loginLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login, middleware.RateLimitMiddleware(loginLimiter))
	auth.GET("/verify", h.Auth.VerifyEmail)
	auth.POST("/resend-verification", h.Auth.ResendVerification)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password", h.Auth.ResetPassword)

	// Auth routes (protected)
	account := api.Group("/auth")
	account.Use(authMiddleware.Authenticate())
	account.GET("/me", h.Auth.Me)
	account.POST("/change-password", h.Auth.ChangePassword)

	// Budget routes (protected)
	budget := api.Group("/budget")
	budget.Use(authMiddleware.Authenticate())
	budget.GET("", h.Budget.GetBudget)
	budget.PUT("", h.Budget.SaveBudget)

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate())
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.GET("/:id/receipt", h.Transaction.GetReceipt)

	// Notification routes (protected)
	notifications := api.Group("/notifications")
	notifications.Use(authMiddleware.Authenticate())
	notifications.GET("", h.Notification.GetNotifications)
	notifications.GET("/unread-count", h.Notification.GetUnreadCount)
	notifications.PATCH("/read-all", h.Notification.MarkAllAsRead)
	notifications.PATCH("/:id/read", h.Notification.MarkAsRead)

	// Report routes (protected)
	reports := api.Group("/reports")
	reports.Use(authMiddleware.Authenticate())
	reports.GET("/summary", h.Report.GetSummary)
	reports.GET("/export.csv", h.Report.ExportCSV)
	reports.GET("/export.pdf", h.Report.ExportPDF)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.Use(authMiddleware.Authenticate())
	dashboard.GET("", h.Dashboard.GetSummary)

	// Activity routes (protected)
	activity := api.Group("/activity")
	activity.Use(authMiddleware.Authenticate())
	activity.GET("", h.Activity.GetActivity)

	// WebSocket authenticates through the token query parameter
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}
}
