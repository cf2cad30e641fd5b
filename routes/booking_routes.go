package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ranktutor/ranktutor/handlers"
	"github.com/ranktutor/ranktutor/middleware"
	"github.com/ranktutor/ranktutor/models"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", middleware.RequireCapability(models.CapBookLessons), handlers.CreateBooking)
	booking.Get("/:bookingId", handlers.GetBookingDetail)

	booking.Post("/:bookingId/accept", middleware.RequireCapability(models.CapTeachLessons), handlers.AcceptBooking)
	booking.Post("/:bookingId/reject", middleware.RequireCapability(models.CapTeachLessons), handlers.RejectBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)
	booking.Post("/:bookingId/complete", handlers.CompleteLesson)

	api.Post("/reviews", middleware.Protected(), middleware.RequireCapability(models.CapBookLessons), handlers.CreateReview)

	disputes := api.Group("/disputes", middleware.Protected())
	disputes.Get("/me", handlers.GetMyDisputes)
	disputes.Post("", handlers.RaiseDispute)
}
