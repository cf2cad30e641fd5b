package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
	"github.com/ranktutor/ranktutor/models"
)

func TutorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	tutor := api.Group("/tutor", middleware.Protected(), middleware.RequireCapability(models.CapTeachLessons))
	tutor.Get("/profile", handlers.GetMyTutorProfile)
	tutor.Put("/profile", handlers.UpdateTutorProfile)
	tutor.Put("/subjects", handlers.SetTutorSubjects)

	tutor.Post("/availability", handlers.AddAvailabilitySlot)
	tutor.Delete("/availability/:slotId", handlers.DeleteAvailabilitySlot)

	tutor.Get("/earnings", handlers.GetTutorEarnings)
	tutor.Post("/premium", handlers.PurchasePremiumFeature)

	tutor.Post("/documents", handlers.RegisterTutorDocument)
	tutor.Get("/documents", handlers.GetMyDocuments)
}
