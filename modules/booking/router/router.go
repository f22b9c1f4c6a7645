package router

import (
	"nuon-api/core/constants"
	"nuon-api/core/middleware"
	"nuon-api/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

// Register mounts the routes under /mentor. The prefix is shared with public
// availability routes, so auth is attached per route.
func (r *BookingRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	mentor := g.Group("/mentor")

	auth := mw.AuthMiddleware()
	mentor.POST("/book", r.controller.BookSlot, auth)
	mentor.GET("/my-bookings", r.controller.ListMyBookings, auth)
	mentor.PUT("/my-bookings/:id/cancel", r.controller.CancelMyBooking, auth)
	mentor.GET("/my-bookings/:id/calendar", r.controller.GetCalendarFile, auth)

	mentorOnly := []echo.MiddlewareFunc{auth, mw.RequireRole(constants.RoleMentor, constants.RoleAdmin)}
	mentor.GET("/bookings", r.controller.ListMentorBookings, mentorOnly...)
	mentor.PUT("/bookings/:id/status", r.controller.UpdateBookingStatus, mentorOnly...)
}
