package notification

import (
	"nuon-api/core/cache"
	"nuon-api/core/database"
	"nuon-api/core/middleware"
	"nuon-api/core/realtime"
	"nuon-api/modules/notification/controller"
	"nuon-api/modules/notification/repository"
	"nuon-api/modules/notification/router"
	"nuon-api/modules/notification/service"
	"nuon-api/modules/notification/worker"

	"github.com/labstack/echo/v4"
)

// Init wires the inbox and the event stream, and returns the worker that
// relays emitted events.
func Init(e *echo.Group, db database.Database, mw *middleware.Middleware, c cache.Cache, hub *realtime.Hub) *worker.EventWorker {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)
	stream := controller.NewStreamController(hub)

	router.NewNotificationRouter(ctrl, stream).Register(e, mw)

	return worker.NewEventWorker(c, svc)
}
