package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
	"github.com/ranktutor/ranktutor/models"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.RequireCapability(models.CapModerateContent))

	admin.Get("/tutors/pending", handlers.ListPendingTutors)
	admin.Post("/tutors/:tutorId/approve", handlers.ApproveTutorVerification)
	admin.Post("/tutors/:tutorId/reject", handlers.RejectTutorVerification)

	admin.Post("/tutors/:tutorId/audit", handlers.ConductQualityAudit)
	admin.Get("/tutors/:tutorId/audits", handlers.GetTutorAuditHistory)
	admin.Get("/tutors/low-quality", handlers.ListLowQualityTutors)

	admin.Get("/disputes", handlers.ListDisputes)
	admin.Post("/disputes/:disputeId/resolve", handlers.ResolveDispute)

	admin.Get("/payments", handlers.ListAllPayments)
	admin.Post("/payments/:paymentId/release", handlers.AdminReleasePayment)
	admin.Post("/invoices/:invoiceId/render", handlers.RegenerateInvoice)

	admin.Post("/reviews/:reviewId/moderate", handlers.ModerateReview)

	// Platform-level maintenance requires the global admin role.
	platform := admin.Group("", middleware.RequireCapability(models.CapManagePlatform))
	platform.Post("/subjects", handlers.CreateSubject)
	platform.Patch("/users/:userId/active", handlers.SetUserActive)
}
