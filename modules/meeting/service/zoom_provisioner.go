package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nuon-api/core/config"
	"nuon-api/core/logger"

	"golang.org/x/oauth2/clientcredentials"
)

const ProviderZoom = "zoom"

// ZoomProvisioner talks to the Zoom REST API with a server-to-server OAuth app.
type ZoomProvisioner struct {
	apiBaseURL string
	client     *http.Client
}

func NewZoomProvisioner(cfg config.ZoomConfig) *ZoomProvisioner {
	oauthConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}

	// The token source caches the access token until it expires.
	client := oauthConfig.Client(context.Background())
	client.Timeout = 10 * time.Second

	return &ZoomProvisioner{
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		client:     client,
	}
}

type zoomCreateMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	Agenda    string `json:"agenda,omitempty"`
	Settings  struct {
		JoinBeforeHost bool `json:"join_before_host"`
		WaitingRoom    bool `json:"waiting_room"`
	} `json:"settings"`
}

type zoomMeetingResponse struct {
	ID      json.Number `json:"id"`
	JoinURL string      `json:"join_url"`
}

func (p *ZoomProvisioner) CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	body := zoomCreateMeetingRequest{
		Topic:     req.Topic,
		Type:      2, // scheduled
		StartTime: req.Start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  req.Duration,
		Timezone:  "UTC",
		Agenda:    req.Agenda,
	}
	body.Settings.WaitingRoom = true

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBaseURL+"/users/me/meetings", bytes.NewReader(raw))
	if err != nil {
		logger.Error("ZoomProvisioner:CreateMeeting:NewRequest:Error", "error", err)
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		logger.Error("ZoomProvisioner:CreateMeeting:DoRequest:Error", "error", err)
		return nil, fmt.Errorf("zoom: create meeting: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("zoom: read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		logger.Error("ZoomProvisioner:CreateMeeting:APIError", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("zoom: create meeting: status %d", resp.StatusCode)
	}

	var created zoomMeetingResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		logger.Error("ZoomProvisioner:CreateMeeting:Unmarshal:Error", "error", err)
		return nil, fmt.Errorf("zoom: decode response: %w", err)
	}
	if created.JoinURL == "" {
		return nil, fmt.Errorf("zoom: response has no join_url")
	}

	id := created.ID.String()
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		logger.Warn("ZoomProvisioner:CreateMeeting:UnexpectedID", "id", id)
	}

	return &Meeting{ID: id, JoinURL: created.JoinURL, Provider: ProviderZoom}, nil
}

// DeleteMeeting removes a scheduled meeting. A meeting Zoom no longer knows
// counts as deleted.
func (p *ZoomProvisioner) DeleteMeeting(ctx context.Context, meetingID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.apiBaseURL+"/meetings/"+url.PathEscape(meetingID), nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		logger.Error("ZoomProvisioner:DeleteMeeting:DoRequest:Error", "meeting_id", meetingID, "error", err)
		return fmt.Errorf("zoom: delete meeting: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	logger.Error("ZoomProvisioner:DeleteMeeting:APIError", "meeting_id", meetingID, "status", resp.StatusCode, "body", string(respBody))
	return fmt.Errorf("zoom: delete meeting: status %d", resp.StatusCode)
}
