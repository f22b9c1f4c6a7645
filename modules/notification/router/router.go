package router

import (
	"nuon-api/core/middleware"
	"nuon-api/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	controller *controller.NotificationController
	stream     *controller.StreamController
}

func NewNotificationRouter(controller *controller.NotificationController, stream *controller.StreamController) *NotificationRouter {
	return &NotificationRouter{controller: controller, stream: stream}
}

func (r *NotificationRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private", mw.AuthMiddleware())

	notifications := group.Group("/notifications")
	notifications.GET("", r.controller.GetMyNotifications)
	notifications.GET("/unread-count", r.controller.CountUnread)
	notifications.PUT("/mark-read", r.controller.MarkAsRead)
	notifications.PUT("/mark-all-read", r.controller.MarkAllAsRead)

	group.GET("/events/stream", r.stream.Stream)
}
