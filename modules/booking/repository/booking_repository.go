package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"nuon-api/core/database"
	"nuon-api/core/errors"
	"nuon-api/core/logger"
	"nuon-api/core/params"
	availabilityEntity "nuon-api/modules/availability/entity"
	"nuon-api/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolation         = "23505"
	activeBookingConstraint = "bookings_active_user_slot_uidx"
)

const bookingColumns = `
	id, reference, user_id, mentor_id, availability_id, status, notes, amount, currency,
	meeting_type, meeting_link, calendar_file_key, cancelled_at, created_at, updated_at
`

const bookingDetailSelect = `
	SELECT
		b.id, b.reference, b.user_id, b.mentor_id, b.availability_id, b.status, b.notes,
		b.amount, b.currency, b.meeting_type, b.meeting_link, b.calendar_file_key,
		b.cancelled_at, b.created_at, b.updated_at,
		COALESCE(u.name, '') AS user_name,
		u.email AS user_email,
		COALESCE(m.name, '') AS mentor_name,
		m.email AS mentor_email,
		m.avatar_url AS mentor_avatar,
		s.title AS slot_title,
		s.description AS slot_description,
		s.start_time AS slot_start_time,
		s.end_time AS slot_end_time,
		s.session_type AS slot_session_type,
		s.location AS slot_location
	FROM bookings b
	JOIN availability_slots s ON s.id = b.availability_id
	LEFT JOIN users u ON u.id = b.user_id
	LEFT JOIN users m ON m.id = b.mentor_id
`

// BookingTx is the set of operations that run inside one booking transaction.
type BookingTx interface {
	// LockSlot takes a row lock on the slot until the transaction ends.
	LockSlot(ctx context.Context, slotID uuid.UUID) (*availabilityEntity.AvailabilitySlot, error)
	HasActiveBooking(ctx context.Context, userID, slotID uuid.UUID) (bool, error)
	CreateBooking(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	// AdjustSlotBookings adds delta to the slot's booking count, never below zero.
	AdjustSlotBookings(ctx context.Context, slotID uuid.UUID, delta int) error
	GetBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) (*entity.Booking, error)
}

type BookingRepositoryInterface interface {
	Transaction(ctx context.Context, fn func(tx BookingTx) error) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetBookingDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]entity.BookingDetail, error)
	ListByMentor(ctx context.Context, mentorID uuid.UUID, status string, queryParams params.QueryParams) (*entity.PaginatedBookingDetail, error)
	SetCalendarFileKey(ctx context.Context, bookingID uuid.UUID, key string) error
}

type BookingRepository struct {
	DB database.Database
}

func NewBookingRepository(db database.Database) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Transaction(ctx context.Context, fn func(tx BookingTx) error) error {
	return r.DB.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetBookingByID", err)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetBookingDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.id = $1`

	var detail entity.BookingDetail
	err := r.DB.GetContext(ctx, &detail, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetBookingDetail", err)
		return nil, err
	}
	return &detail, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]entity.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND b.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC`

	details := []entity.BookingDetail{}
	if err := r.DB.SelectContext(ctx, &details, query, args...); err != nil {
		logger.Error("BookingRepository:ListByUser", err)
		return nil, err
	}
	return details, nil
}

func (r *BookingRepository) ListByMentor(ctx context.Context, mentorID uuid.UUID, status string, queryParams params.QueryParams) (*entity.PaginatedBookingDetail, error) {
	where := ` WHERE b.mentor_id = $1`
	args := []any{mentorID}
	if status != "" {
		where += ` AND b.status = $2`
		args = append(args, status)
	}

	var totalItems int
	if err := r.DB.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM bookings b`+where, args...); err != nil {
		logger.Error("BookingRepository:ListByMentor:Count:Error", err)
		return nil, err
	}

	query := fmt.Sprintf(`%s %s ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`,
		bookingDetailSelect, where, len(args)+1, len(args)+2)
	args = append(args, queryParams.PageSize, queryParams.Offset())

	details := []entity.BookingDetail{}
	if err := r.DB.SelectContext(ctx, &details, query, args...); err != nil {
		logger.Error("BookingRepository:ListByMentor:Select:Error", err)
		return nil, err
	}

	return &entity.PaginatedBookingDetail{
		Items:      details,
		TotalItems: totalItems,
		PageNumber: queryParams.PageNumber,
		PageSize:   queryParams.PageSize,
	}, nil
}

func (r *BookingRepository) SetCalendarFileKey(ctx context.Context, bookingID uuid.UUID, key string) error {
	err := r.DB.ExecContext(ctx, `UPDATE bookings SET calendar_file_key = $2, updated_at = NOW() WHERE id = $1`, bookingID, key)
	if err != nil {
		logger.Error("BookingRepository:SetCalendarFileKey", err)
		return err
	}
	return nil
}

type bookingTx struct {
	tx *sqlx.Tx
}

func (t *bookingTx) LockSlot(ctx context.Context, slotID uuid.UUID) (*availabilityEntity.AvailabilitySlot, error) {
	query := `
		SELECT id, mentor_id, title, description, start_time, end_time, duration,
			max_bookings, current_bookings, price, currency, session_type, meeting_type,
			meeting_link, meeting_id, location, specializations, is_active, created_at, updated_at
		FROM availability_slots
		WHERE id = $1
		FOR UPDATE
	`

	var slot availabilityEntity.AvailabilitySlot
	err := t.tx.GetContext(ctx, &slot, query, slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:LockSlot", err)
		return nil, err
	}
	return &slot, nil
}

func (t *bookingTx) HasActiveBooking(ctx context.Context, userID, slotID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND availability_id = $2 AND status IN ('pending', 'confirmed')
		)
	`

	var exists bool
	if err := t.tx.GetContext(ctx, &exists, query, userID, slotID); err != nil {
		logger.Error("BookingRepository:HasActiveBooking", err)
		return false, err
	}
	return exists, nil
}

func (t *bookingTx) CreateBooking(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	query := `
		INSERT INTO bookings (
			reference, user_id, mentor_id, availability_id, status, notes,
			amount, currency, meeting_type, meeting_link
		) VALUES (
			:reference, :user_id, :mentor_id, :availability_id, :status, :notes,
			:amount, :currency, :meeting_type, :meeting_link
		)
		RETURNING ` + bookingColumns

	rows, err := sqlx.NamedQueryContext(ctx, t.tx, query, booking)
	if err != nil {
		if isActiveBookingConflict(err) {
			return nil, errors.NewAppError(errors.ErrDuplicateBooking, "you already have an active booking for this slot", err)
		}
		logger.Error("BookingRepository:CreateBooking", err)
		return nil, err
	}
	defer rows.Close()

	var created entity.Booking
	if !rows.Next() {
		if err := rows.Err(); err != nil && isActiveBookingConflict(err) {
			return nil, errors.NewAppError(errors.ErrDuplicateBooking, "you already have an active booking for this slot", err)
		}
		return nil, sql.ErrNoRows
	}
	if err := rows.StructScan(&created); err != nil {
		logger.Error("BookingRepository:CreateBooking:Scan", err)
		return nil, err
	}
	return &created, nil
}

func (t *bookingTx) AdjustSlotBookings(ctx context.Context, slotID uuid.UUID, delta int) error {
	query := `
		UPDATE availability_slots
		SET current_bookings = GREATEST(current_bookings + $2, 0), updated_at = NOW()
		WHERE id = $1
	`
	if _, err := t.tx.ExecContext(ctx, query, slotID, delta); err != nil {
		logger.Error("BookingRepository:AdjustSlotBookings", err)
		return err
	}
	return nil
}

func (t *bookingTx) GetBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var booking entity.Booking
	err := t.tx.GetContext(ctx, &booking, query, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetBookingForUpdate", err)
		return nil, err
	}
	return &booking, nil
}

func (t *bookingTx) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) (*entity.Booking, error) {
	query := `
		UPDATE bookings SET
			status = $2,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var booking entity.Booking
	if err := t.tx.GetContext(ctx, &booking, query, bookingID, string(status)); err != nil {
		logger.Error("BookingRepository:UpdateBookingStatus", err)
		return nil, err
	}
	return &booking, nil
}

func isActiveBookingConflict(err error) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == activeBookingConstraint
}
