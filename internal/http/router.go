package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/http/handlers"
	"github.com/Mootosamy/backend-chronopost/internal/http/middleware"
	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
	"github.com/Mootosamy/backend-chronopost/internal/modules/email"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

type Deps struct {
	Auth        *auth.Service
	Links       *links.Service
	Engine      *payments.Engine
	Webhooks    *payments.WebhookService
	Email       *email.Service
	CORSOrigins []string
}

func NewRouter(logger *slog.Logger, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		middleware.Recovery(logger),
		cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	root := handlers.NewRootHandler(d.CORSOrigins)
	authH := handlers.NewAuthHandler(d.Auth)
	linksH := handlers.NewLinksHandler(d.Links)
	emailH := handlers.NewEmailHandler(d.Email)
	paypalH := handlers.NewPayPalHandler(d.Engine)
	hooksH := handlers.NewWebhookHandler(d.Webhooks)
	txH := handlers.NewTransactionsHandler(d.Engine.Ledger())

	api := r.Group("/api")
	{
		api.GET("/", root.Index)
		api.GET("/test-cors", root.TestCORS)

		api.POST("/auth/login", authH.Login)
		api.GET("/payment-links/:id", linksH.Get)
		api.GET("/preview-email", emailH.Preview)

		// customer checkout, unauthenticated
		api.POST("/paypal/create-order", paypalH.CreateOrder)
		api.POST("/paypal/capture-order", paypalH.CaptureOrder)
		api.GET("/paypal/order/:id", paypalH.GetOrder)

		api.POST("/webhooks/paypal", hooksH.PayPal)
	}

	op := api.Group("", middleware.RequireOperator(d.Auth))
	{
		op.GET("/auth/me", authH.Me)
		op.POST("/auth/register", authH.Register)

		op.POST("/payment-links", linksH.Create)
		op.GET("/payment-links", linksH.List)
		op.PUT("/payment-links/:id/status", linksH.UpdateStatus)

		op.POST("/send-payment-email", emailH.Send)

		op.GET("/transactions", txH.List)
		op.GET("/transactions/:id", txH.Get)
		op.GET("/webhooks/events", hooksH.List)
	}

	return r
}
