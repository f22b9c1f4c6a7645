package meeting

import (
	"nuon-api/core/config"
	"nuon-api/core/logger"
	"nuon-api/modules/meeting/service"
)

// Init picks the Zoom provisioner when credentials are configured and falls
// back to hosted room links otherwise.
func Init(cfg *config.Config) service.MeetingServiceInterface {
	var provisioner service.Provisioner
	if cfg.ZoomEnabled() {
		provisioner = service.NewZoomProvisioner(cfg.Zoom)
		logger.Info("Meeting:Init", "provider", service.ProviderZoom)
	} else {
		provisioner = service.NewRoomProvisioner(cfg.Meeting.RoomBaseURL)
		logger.Info("Meeting:Init", "provider", service.ProviderRoom, "base_url", cfg.Meeting.RoomBaseURL)
	}
	return service.NewMeetingService(provisioner, cfg.Meeting.Timeout)
}
