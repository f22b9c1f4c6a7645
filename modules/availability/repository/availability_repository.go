package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nuon-api/core/database"
	"nuon-api/core/logger"
	"nuon-api/core/params"
	"nuon-api/modules/availability/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const slotColumns = `
	id, mentor_id, title, description, start_time, end_time, duration,
	max_bookings, current_bookings, price, currency, session_type, meeting_type,
	meeting_link, meeting_id, location, specializations, is_active, created_at, updated_at
`

type SlotFilter struct {
	MentorID     uuid.UUID
	UpcomingOnly bool
	Now          time.Time
}

// SlotTx is the set of operations that must run inside one transaction.
type SlotTx interface {
	// LockMentorSchedule serialises schedule changes of one mentor until the
	// transaction ends.
	LockMentorSchedule(ctx context.Context, mentorID uuid.UUID) error
	FindOverlappingSlot(ctx context.Context, mentorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*entity.AvailabilitySlot, error)
	GetSlotForUpdate(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) (*entity.AvailabilitySlot, error)
	CreateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
}

type AvailabilityRepositoryInterface interface {
	Transaction(ctx context.Context, fn func(tx SlotTx) error) error
	GetSlotByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilitySlot, error)
	ListSlots(ctx context.Context, filter SlotFilter, queryParams params.QueryParams) (*entity.PaginatedSlotEntity, error)
}

type AvailabilityRepository struct {
	DB database.Database
}

func NewAvailabilityRepository(db database.Database) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

func (r *AvailabilityRepository) Transaction(ctx context.Context, fn func(tx SlotTx) error) error {
	return r.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(&slotTx{tx: tx})
	})
}

func (r *AvailabilityRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1 AND deleted_at IS NULL`

	var slot entity.AvailabilitySlot
	err := r.DB.GetContext(ctx, &slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AvailabilityRepository:GetSlotByID", err)
		return nil, err
	}
	return &slot, nil
}

func (r *AvailabilityRepository) ListSlots(ctx context.Context, filter SlotFilter, queryParams params.QueryParams) (*entity.PaginatedSlotEntity, error) {
	baseQuery := `FROM availability_slots WHERE mentor_id = $1 AND deleted_at IS NULL`
	args := []any{filter.MentorID}
	if filter.UpcomingOnly {
		baseQuery += ` AND start_time >= $2 AND is_active = TRUE`
		args = append(args, filter.Now)
	}

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		logger.Error("AvailabilityRepository:ListSlots:Count:Error", err)
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY start_time ASC LIMIT $%d OFFSET $%d`,
		slotColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, queryParams.PageSize, queryParams.Offset())

	slots := []entity.AvailabilitySlot{}
	if err := r.DB.SelectContext(ctx, &slots, query, args...); err != nil {
		logger.Error("AvailabilityRepository:ListSlots:Select:Error", err)
		return nil, err
	}

	return &entity.PaginatedSlotEntity{
		Items:      slots,
		TotalItems: totalItems,
		PageNumber: queryParams.PageNumber,
		PageSize:   queryParams.PageSize,
	}, nil
}

type slotTx struct {
	tx *sqlx.Tx
}

func (t *slotTx) LockMentorSchedule(ctx context.Context, mentorID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, mentorID)
	if err != nil {
		logger.Error("AvailabilityRepository:LockMentorSchedule", err)
		return err
	}
	return nil
}

func (t *slotTx) FindOverlappingSlot(ctx context.Context, mentorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*entity.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE mentor_id = $1
		  AND is_active = TRUE
		  AND id <> $2
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time
		LIMIT 1
	`

	var slot entity.AvailabilitySlot
	err := t.tx.GetContext(ctx, &slot, query, mentorID, excludeID, start, end)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AvailabilityRepository:FindOverlappingSlot", err)
		return nil, err
	}
	return &slot, nil
}

func (t *slotTx) GetSlotForUpdate(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) (*entity.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1 AND mentor_id = $2 AND deleted_at IS NULL FOR UPDATE`

	var slot entity.AvailabilitySlot
	err := t.tx.GetContext(ctx, &slot, query, slotID, mentorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AvailabilityRepository:GetSlotForUpdate", err)
		return nil, err
	}
	return &slot, nil
}

func (t *slotTx) CreateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error) {
	query := `
		INSERT INTO availability_slots (
			mentor_id, title, description, start_time, end_time, duration,
			max_bookings, current_bookings, price, currency, session_type, meeting_type,
			meeting_link, meeting_id, location, specializations, is_active
		) VALUES (
			:mentor_id, :title, :description, :start_time, :end_time, :duration,
			:max_bookings, 0, :price, :currency, :session_type, :meeting_type,
			:meeting_link, :meeting_id, :location, :specializations, TRUE
		)
		RETURNING ` + slotColumns

	rows, err := sqlx.NamedQueryContext(ctx, t.tx, query, slot)
	if err != nil {
		logger.Error("AvailabilityRepository:CreateSlot", err)
		return nil, err
	}
	defer rows.Close()

	var created entity.AvailabilitySlot
	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	if err := rows.StructScan(&created); err != nil {
		logger.Error("AvailabilityRepository:CreateSlot:Scan", err)
		return nil, err
	}
	return &created, nil
}

func (t *slotTx) UpdateSlot(ctx context.Context, slot *entity.AvailabilitySlot) (*entity.AvailabilitySlot, error) {
	query := `
		UPDATE availability_slots SET
			title = :title,
			description = :description,
			start_time = :start_time,
			end_time = :end_time,
			duration = :duration,
			max_bookings = :max_bookings,
			price = :price,
			session_type = :session_type,
			meeting_type = :meeting_type,
			meeting_link = :meeting_link,
			meeting_id = :meeting_id,
			location = :location,
			specializations = :specializations,
			is_active = :is_active,
			updated_at = NOW()
		WHERE id = :id
		RETURNING ` + slotColumns

	rows, err := sqlx.NamedQueryContext(ctx, t.tx, query, slot)
	if err != nil {
		logger.Error("AvailabilityRepository:UpdateSlot", err)
		return nil, err
	}
	defer rows.Close()

	var updated entity.AvailabilitySlot
	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	if err := rows.StructScan(&updated); err != nil {
		logger.Error("AvailabilityRepository:UpdateSlot:Scan", err)
		return nil, err
	}
	return &updated, nil
}

// DeleteSlot removes the slot. A slot that still has booking history (all of
// it cancelled) is archived instead so the bookings keep their reference;
// archived slots are invisible to every read in this repository.
func (t *slotTx) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	query := `
		DELETE FROM availability_slots
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE availability_id = $1)
	`
	result, err := t.tx.ExecContext(ctx, query, slotID)
	if err != nil {
		logger.Error("AvailabilityRepository:DeleteSlot", err)
		return err
	}

	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}

	_, err = t.tx.ExecContext(ctx, `UPDATE availability_slots SET is_active = FALSE, deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, slotID)
	if err != nil {
		logger.Error("AvailabilityRepository:DeleteSlot:Archive", err)
		return err
	}
	return nil
}
