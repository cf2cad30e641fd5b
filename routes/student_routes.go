package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
	"github.com/ranktutor/ranktutor/models"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	student := api.Group("/student", middleware.Protected(), middleware.RequireCapability(models.CapBookLessons))
	student.Get("/profile", handlers.GetMyStudentProfile)
	student.Put("/profile", handlers.UpsertStudentProfile)
	student.Get("/recommendations", handlers.GetRecommendedTutors)
}
