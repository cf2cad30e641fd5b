package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/subjects", handlers.ListSubjects)

	// Browsing is open; a logged-in student also gets a match score.
	tutors := api.Group("/tutors", middleware.OptionalAuth())
	tutors.Get("/search", handlers.SearchTutors)
	tutors.Get("/:tutorId", handlers.GetTutorDetail)
	tutors.Get("/:tutorId/reviews", handlers.GetTutorReviews)
	tutors.Get("/:tutorId/availability", handlers.GetTutorAvailability)

	api.Post("/webhooks/razorpay", handlers.RazorpayWebhook)
}
