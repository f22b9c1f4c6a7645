package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nuon-api/core/controller"
	"nuon-api/core/errors"
	"nuon-api/core/logger"
	"nuon-api/core/realtime"

	"github.com/labstack/echo/v4"
)

const defaultHeartbeat = 25 * time.Second

// StreamController serves realtime events as server-sent events.
type StreamController struct {
	hub       *realtime.Hub
	heartbeat time.Duration
	controller.BaseController
}

func NewStreamController(hub *realtime.Hub) *StreamController {
	return &StreamController{
		hub:            hub,
		heartbeat:      defaultHeartbeat,
		BaseController: controller.NewBaseController(),
	}
}

// Stream keeps the connection open and writes one SSE frame per event
// addressed to the caller or broadcast to everyone.
// @Summary Realtime event stream
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Router /private/events/stream [get]
func (c *StreamController) Stream(ctx echo.Context) error {
	userID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := c.hub.Subscribe(userID)
	defer c.hub.Unsubscribe(sub)

	logger.Debug("StreamController:Stream:Open", "user_id", userID)

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			logger.Debug("StreamController:Stream:Closed", "user_id", userID)
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case env, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(env)
			if err != nil {
				logger.Warn("StreamController:Stream:Encode", "event", env.Event, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", env.Event, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
