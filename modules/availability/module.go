package availability

import (
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/database"
	"nuon-api/core/events"
	"nuon-api/core/middleware"
	"nuon-api/modules/availability/controller"
	"nuon-api/modules/availability/repository"
	"nuon-api/modules/availability/router"
	"nuon-api/modules/availability/service"
	meetingService "nuon-api/modules/meeting/service"

	"github.com/labstack/echo/v4"
)

// Init wires the module and returns the slot cache so bookings can
// invalidate public listings.
func Init(
	g *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	c cache.Cache,
	cacheTTL time.Duration,
	meetings meetingService.MeetingServiceInterface,
	emitter events.Emitter,
) *service.SlotCache {
	repo := repository.NewAvailabilityRepository(db)
	slotCache := service.NewSlotCache(c, cacheTTL)
	svc := service.NewAvailabilityService(repo, meetings, emitter, slotCache)
	ctrl := controller.NewAvailabilityController(svc)

	router.NewAvailabilityRouter(ctrl).Register(g, mw)

	return slotCache
}
