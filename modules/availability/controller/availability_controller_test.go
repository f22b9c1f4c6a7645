package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nuon-api/core/constants"
	coreController "nuon-api/core/controller"
	"nuon-api/core/errors"
	"nuon-api/core/params"
	"nuon-api/core/utils"
	"nuon-api/modules/availability/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	createErr  *errors.AppError
	created    *dto.CreateSlotRequest
	listParams params.QueryParams
	upcoming   bool
}

func (s *stubService) CreateSlot(ctx context.Context, mentorID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	s.created = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &dto.SlotResponse{ID: uuid.New(), MentorID: mentorID, Title: req.Title}, nil
}

func (s *stubService) ListSlots(ctx context.Context, mentorID uuid.UUID, upcomingOnly bool, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError) {
	s.upcoming = upcomingOnly
	s.listParams = queryParams
	return &dto.PaginatedSlotResponse{Items: []dto.SlotResponse{}}, nil
}

func (s *stubService) ListPublicSlots(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError) {
	return &dto.PaginatedSlotResponse{Items: []dto.SlotResponse{}}, nil
}

func (s *stubService) GetSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
}

func (s *stubService) UpdateSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrSlotLocked, "cannot modify a slot that has bookings", nil)
}

func (s *stubService) DeleteSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) *errors.AppError {
	return nil
}

func newServer(svc *stubService, withClaims bool) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = coreController.HTTPErrorHandler
	ctrl := NewAvailabilityController(svc)

	auth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if withClaims {
				c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: uuid.New(), Role: constants.RoleMentor})
			}
			return next(c)
		}
	}
	e.POST("/mentor/availability", ctrl.CreateSlot, auth)
	e.GET("/mentor/availability", ctrl.ListMySlots, auth)
	e.PUT("/mentor/availability/:id", ctrl.UpdateSlot, auth)
	e.GET("/mentor/availability/slot/:id", ctrl.GetSlot)
	e.GET("/mentor/:mentorId/availability", ctrl.ListPublicSlots)
	return e
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateSlot_Created(t *testing.T) {
	svc := &stubService{}
	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)

	rec := send(newServer(svc, true), http.MethodPost, "/mentor/availability",
		`{"title":"Triage basics","start_time":"`+start+`","end_time":"`+end+`","price":250}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	require.NotNil(t, svc.created)
	assert.Equal(t, "Triage basics", svc.created.Title)
}

func TestCreateSlot_ValidationErrors(t *testing.T) {
	rec := send(newServer(&stubService{}, true), http.MethodPost, "/mentor/availability", `{"price":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_INPUT"`)
	assert.Contains(t, rec.Body.String(), `"field":"title"`)
}

func TestCreateSlot_MalformedBody(t *testing.T) {
	rec := send(newServer(&stubService{}, true), http.MethodPost, "/mentor/availability", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_REQUEST_DATA"`)
}

func TestCreateSlot_DomainError(t *testing.T) {
	svc := &stubService{createErr: errors.NewAppError(errors.ErrOverlappingSlot, "slot overlaps an existing slot", nil)}
	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)

	rec := send(newServer(svc, true), http.MethodPost, "/mentor/availability",
		`{"title":"x","start_time":"`+start+`","end_time":"`+end+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"OVERLAPPING_SLOT"`)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCreateSlot_Unauthorized(t *testing.T) {
	rec := send(newServer(&stubService{}, false), http.MethodPost, "/mentor/availability", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMySlots_ParsesQuery(t *testing.T) {
	svc := &stubService{}
	rec := send(newServer(svc, true), http.MethodGet, "/mentor/availability?upcoming=true&page=2&limit=500", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.upcoming)
	assert.Equal(t, 2, svc.listParams.PageNumber)
	assert.Equal(t, constants.MaxPageSize, svc.listParams.PageSize)
}

func TestUpdateSlot_Locked(t *testing.T) {
	rec := send(newServer(&stubService{}, true), http.MethodPut, "/mentor/availability/"+uuid.NewString(), `{"title":"new"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SLOT_LOCKED"`)

	rec = send(newServer(&stubService{}, true), http.MethodPut, "/mentor/availability/not-a-uuid", `{"title":"new"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	e := newServer(&stubService{}, false)

	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/mentor/"+uuid.NewString()+"/availability", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(e, http.MethodGet, "/mentor/nobody/availability", "").Code)
	assert.Equal(t, http.StatusNotFound, send(e, http.MethodGet, "/mentor/availability/slot/"+uuid.NewString(), "").Code)
}
