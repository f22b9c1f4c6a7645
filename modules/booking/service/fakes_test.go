package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"nuon-api/core/params"
	"nuon-api/core/storage"
	availabilityEntity "nuon-api/modules/availability/entity"
	"nuon-api/modules/booking/entity"
	"nuon-api/modules/booking/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// memoryRepo stores slots and bookings in maps. Transactions are serialised
// by mu and roll back by restoring a snapshot.
type memoryRepo struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]*availabilityEntity.AvailabilitySlot
	bookings map[uuid.UUID]*entity.Booking
	clock    time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		slots:    map[uuid.UUID]*availabilityEntity.AvailabilitySlot{},
		bookings: map[uuid.UUID]*entity.Booking{},
		clock:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) Transaction(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := make(map[uuid.UUID]availabilityEntity.AvailabilitySlot, len(r.slots))
	for id, s := range r.slots {
		slots[id] = *s
	}
	bookings := make(map[uuid.UUID]entity.Booking, len(r.bookings))
	for id, b := range r.bookings {
		bookings[id] = *b
	}

	if err := fn(&memoryTx{repo: r}); err != nil {
		r.slots = make(map[uuid.UUID]*availabilityEntity.AvailabilitySlot, len(slots))
		for id, s := range slots {
			s := s
			r.slots[id] = &s
		}
		r.bookings = make(map[uuid.UUID]*entity.Booking, len(bookings))
		for id, b := range bookings {
			b := b
			r.bookings[id] = &b
		}
		return err
	}
	return nil
}

func (r *memoryRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memoryRepo) detail(b *entity.Booking) entity.BookingDetail {
	d := entity.BookingDetail{Booking: *b, UserName: "user", MentorName: "mentor"}
	if s, ok := r.slots[b.AvailabilityID]; ok {
		d.SlotTitle = s.Title
		d.SlotStartTime = s.StartTime
		d.SlotEndTime = s.EndTime
		d.SlotSessionType = string(s.SessionType)
		d.SlotLocation = s.Location
	}
	return d
}

func (r *memoryRepo) GetBookingDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	d := r.detail(b)
	return &d, nil
}

func (r *memoryRepo) filter(match func(*entity.Booking) bool) []entity.BookingDetail {
	out := []entity.BookingDetail{}
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, r.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]entity.BookingDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(b *entity.Booking) bool {
		return b.UserID == userID && (status == "" || string(b.Status) == status)
	}), nil
}

func (r *memoryRepo) ListByMentor(ctx context.Context, mentorID uuid.UUID, status string, queryParams params.QueryParams) (*entity.PaginatedBookingDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(func(b *entity.Booking) bool {
		return b.MentorID == mentorID && (status == "" || string(b.Status) == status)
	})

	total := len(all)
	from := min(queryParams.Offset(), total)
	to := min(from+queryParams.PageSize, total)
	return &entity.PaginatedBookingDetail{
		Items:      all[from:to],
		TotalItems: total,
		PageNumber: queryParams.PageNumber,
		PageSize:   queryParams.PageSize,
	}, nil
}

func (r *memoryRepo) SetCalendarFileKey(ctx context.Context, bookingID uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[bookingID]; ok {
		b.CalendarFileKey = &key
	}
	return nil
}

func (r *memoryRepo) putSlot(slot availabilityEntity.AvailabilitySlot) *availabilityEntity.AvailabilitySlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	r.slots[slot.ID] = &slot
	cp := slot
	return &cp
}

func (r *memoryRepo) slot(id uuid.UUID) availabilityEntity.AvailabilitySlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.slots[id]
}

func (r *memoryRepo) countActive(slotID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.bookings {
		if b.AvailabilityID == slotID && b.Status.IsActive() {
			n++
		}
	}
	return n
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) LockSlot(ctx context.Context, slotID uuid.UUID) (*availabilityEntity.AvailabilitySlot, error) {
	s, ok := t.repo.slots[slotID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (t *memoryTx) HasActiveBooking(ctx context.Context, userID, slotID uuid.UUID) (bool, error) {
	for _, b := range t.repo.bookings {
		if b.UserID == userID && b.AvailabilityID == slotID && b.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) CreateBooking(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	cp := *booking
	cp.ID = uuid.New()
	// A strictly increasing clock keeps newest-first ordering deterministic.
	t.repo.clock = t.repo.clock.Add(time.Second)
	cp.CreatedAt = t.repo.clock
	cp.UpdatedAt = cp.CreatedAt
	t.repo.bookings[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (t *memoryTx) AdjustSlotBookings(ctx context.Context, slotID uuid.UUID, delta int) error {
	if s, ok := t.repo.slots[slotID]; ok {
		s.CurrentBookings = max(s.CurrentBookings+delta, 0)
	}
	return nil
}

func (t *memoryTx) GetBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	b, ok := t.repo.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (t *memoryTx) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) (*entity.Booking, error) {
	b := t.repo.bookings[bookingID]
	b.Status = status
	if status == entity.BookingStatusCancelled {
		now := time.Now()
		b.CancelledAt = &now
	}
	cp := *b
	return &cp, nil
}

type memoryStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	disabled bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s.disabled {
		return storage.ErrStorageDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	s.types[key] = contentType
	return nil
}

func (s *memoryStorage) PresignGet(ctx context.Context, key string) (string, error) {
	if s.disabled {
		return "", storage.ErrStorageDisabled
	}
	return "https://files.example/" + key + "?sig=1", nil
}

type enqueued struct {
	taskType string
	payload  json.RawMessage
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []enqueued
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, enqueued{taskType: taskType, payload: raw})
	return nil
}

func (e *recordingEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

type emitted struct {
	event   string
	payload any
	userIDs []uuid.UUID
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(ctx context.Context, event string, payload any, userIDs ...uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{event: event, payload: payload, userIDs: userIDs})
}

func (e *recordingEmitter) snapshot() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

type countingInvalidator struct {
	mu      sync.Mutex
	mentors []uuid.UUID
}

func (c *countingInvalidator) Invalidate(ctx context.Context, mentorID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mentors = append(c.mentors, mentorID)
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mentors)
}
