package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
	"github.com/ranktutor/ranktutor/models"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payment := api.Group("/payments", middleware.Protected())
	payment.Get("/me", handlers.GetMyPayments)
	payment.Get("/:paymentId", handlers.GetPaymentDetail)
	payment.Post("/:paymentId/pay", middleware.RequireCapability(models.CapBookLessons), handlers.InitiateGatewayPayment)
	payment.Post("/verify", handlers.VerifyGatewayPayment)
	payment.Post("/:paymentId/refund", middleware.RequireCapability(models.CapBookLessons), handlers.RequestRefund)
	payment.Post("/:paymentId/release", middleware.RequireCapability(models.CapTeachLessons), handlers.ReleaseMyPayment)

	wallet := api.Group("/wallet", middleware.Protected())
	wallet.Get("", handlers.GetMyWallet)
	wallet.Post("/recharge", handlers.InitiateWalletRecharge)
	wallet.Post("/recharge/verify", handlers.VerifyWalletRecharge)
}
