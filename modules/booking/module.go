package booking

import (
	"time"

	"nuon-api/core/database"
	"nuon-api/core/events"
	"nuon-api/core/middleware"
	"nuon-api/core/queue"
	"nuon-api/core/storage"
	"nuon-api/modules/booking/controller"
	"nuon-api/modules/booking/repository"
	"nuon-api/modules/booking/router"
	"nuon-api/modules/booking/service"
	"nuon-api/modules/booking/worker"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	DB         database.Database
	Storage    storage.ObjectStorage
	Enqueuer   queue.Enqueuer
	Emitter    events.Emitter
	SlotCache  service.SlotCacheInvalidator
	PresignTTL time.Duration
}

// Init wires the module and returns the calendar worker so the caller can
// register it on the queue server.
func Init(g *echo.Group, mw *middleware.Middleware, deps Deps) *worker.CalendarWorker {
	repo := repository.NewBookingRepository(deps.DB)
	svc := service.NewBookingService(repo, deps.Storage, deps.Enqueuer, deps.Emitter, deps.SlotCache, deps.PresignTTL)
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Register(g, mw)

	return worker.NewCalendarWorker(svc)
}
