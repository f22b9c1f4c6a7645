package service

import (
	"context"
	"fmt"
	"strings"

	"nuon-api/core/utils"

	"github.com/gosimple/slug"
)

const ProviderRoom = "room"

// RoomProvisioner builds a hosted-room link without calling any API. Used
// when no Zoom app is configured.
type RoomProvisioner struct {
	baseURL string
}

func NewRoomProvisioner(baseURL string) *RoomProvisioner {
	return &RoomProvisioner{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *RoomProvisioner) CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	name := slug.Make(req.Topic)
	if name == "" {
		name = "session"
	}
	if len(name) > 48 {
		name = strings.Trim(name[:48], "-")
	}

	room := fmt.Sprintf("%s-%s", name, utils.GenerateRoomSuffix())
	return &Meeting{
		ID:       room,
		JoinURL:  fmt.Sprintf("%s/%s", p.baseURL, room),
		Provider: ProviderRoom,
	}, nil
}

// DeleteMeeting is a no-op: room links are not registered anywhere.
func (p *RoomProvisioner) DeleteMeeting(ctx context.Context, meetingID string) error {
	return nil
}
