package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	users := api.Group("/users", middleware.Protected())
	users.Get("/me", handlers.GetMe)
	users.Patch("/me", handlers.UpdateMe)
	users.Post("/me/change-password", handlers.ChangePassword)
}
