package router

import (
	"nuon-api/core/constants"
	"nuon-api/core/middleware"
	"nuon-api/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	controller *controller.AvailabilityController
}

func NewAvailabilityRouter(controller *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{controller: controller}
}

// Register mounts the routes under /mentor. The public listing shares the
// prefix, so auth is applied per route rather than on the group.
func (r *AvailabilityRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	mentor := g.Group("/mentor")

	mentorOnly := []echo.MiddlewareFunc{mw.AuthMiddleware(), mw.RequireRole(constants.RoleMentor, constants.RoleAdmin)}
	mentor.POST("/availability", r.controller.CreateSlot, mentorOnly...)
	mentor.GET("/availability", r.controller.ListMySlots, mentorOnly...)
	mentor.PUT("/availability/:id", r.controller.UpdateSlot, mentorOnly...)
	mentor.DELETE("/availability/:id", r.controller.DeleteSlot, mentorOnly...)

	mentor.GET("/availability/slot/:id", r.controller.GetSlot)
	mentor.GET("/:mentorId/availability", r.controller.ListPublicSlots)
}
