package service

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/errors"
	"nuon-api/core/params"
	"nuon-api/modules/availability/entity"
	"nuon-api/modules/availability/repository"
	meetingService "nuon-api/modules/meeting/service"

	"github.com/google/uuid"
)

// memoryRepo keeps slots in a map. Transactions are serialised by mu and
// roll back by restoring a snapshot.
type memoryRepo struct {
	mu        sync.Mutex
	slots     map[uuid.UUID]*entity.AvailabilitySlot
	listCalls int
	lockCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{slots: map[uuid.UUID]*entity.AvailabilitySlot{}}
}

func (r *memoryRepo) Transaction(ctx context.Context, fn func(tx repository.SlotTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[uuid.UUID]entity.AvailabilitySlot, len(r.slots))
	for id, s := range r.slots {
		snapshot[id] = *s
	}

	if err := fn(&memoryTx{repo: r}); err != nil {
		r.slots = make(map[uuid.UUID]*entity.AvailabilitySlot, len(snapshot))
		for id, s := range snapshot {
			s := s
			r.slots[id] = &s
		}
		return err
	}
	return nil
}

func (r *memoryRepo) GetSlotByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memoryRepo) ListSlots(ctx context.Context, filter repository.SlotFilter, queryParams params.QueryParams) (*entity.PaginatedSlotEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	matched := []entity.AvailabilitySlot{}
	for _, s := range r.slots {
		if s.MentorID != filter.MentorID {
			continue
		}
		if filter.UpcomingOnly && (s.StartTime.Before(filter.Now) || !s.IsActive) {
			continue
		}
		matched = append(matched, *s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.Before(matched[j].StartTime) })

	total := len(matched)
	from := min(queryParams.Offset(), total)
	to := min(from+queryParams.PageSize, total)

	return &entity.PaginatedSlotEntity{
		Items:      matched[from:to],
		TotalItems: total,
		PageNumber: queryParams.PageNumber,
		PageSize:   queryParams.PageSize,
	}, nil
}

func (r *memoryRepo) put(slot entity.AvailabilitySlot) *entity.AvailabilitySlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	r.slots[slot.ID] = &slot
	return &slot
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) LockMentorSchedule(ctx context.Context, mentorID uuid.UUID) error {
	t.repo.lockCalls++
	return nil
}

func (t *memoryTx) FindOverlappingSlot(ctx context.Context, mentorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*entity.AvailabilitySlot, error) {
	for _, s := range t.repo.slots {
		if s.MentorID == mentorID && s.IsActive && s.ID != excludeID && s.Overlaps(start, end) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) GetSlotForUpdate(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) (*entity.AvailabilitySlot, error) {
	s, ok := t.repo.slots[slotID]
	if !ok || s.MentorID != mentorID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (t *memoryTx) CreateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error) {
	cp := *slot
	cp.ID = uuid.New()
	cp.CurrentBookings = 0
	cp.IsActive = true
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	t.repo.slots[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (t *memoryTx) UpdateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error) {
	cp := *slot
	cp.UpdatedAt = time.Now()
	t.repo.slots[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (t *memoryTx) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	delete(t.repo.slots, slotID)
	return nil
}

type stubMeetings struct {
	mu       sync.Mutex
	calls    int
	fail     bool
	released []string
	// afterProvision runs once a meeting is created, outside any transaction.
	afterProvision func()
}

func (m *stubMeetings) Provision(ctx context.Context, req meetingService.MeetingRequest) (*meetingService.Meeting, *errors.AppError) {
	m.mu.Lock()
	m.calls++
	calls, fail, hook := m.calls, m.fail, m.afterProvision
	m.mu.Unlock()

	if fail {
		return nil, errors.NewAppError(errors.ErrExternalProvider, "zoom unavailable", nil)
	}
	if hook != nil {
		hook()
	}
	return &meetingService.Meeting{ID: "mtg-" + strconv.Itoa(calls), JoinURL: "https://zoom.us/j/" + strconv.Itoa(calls), Provider: "zoom"}, nil
}

func (m *stubMeetings) Release(ctx context.Context, meetingID string) *errors.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, meetingID)
	return nil
}

func (m *stubMeetings) releasedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.released...)
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

func (e *recordingEmitter) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.event
	}
	return out
}

// memoryCache is a map-backed cache.Cache for the calls the slot cache makes.
type memoryCache struct {
	cache.Cache
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{Cache: cache.NewNoopCache(), values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		c.ttls[key] = ttl
	}
	return nil
}

func (c *memoryCache) ttl(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(raw), ttl)
}
