package repository

import (
	"context"
	"testing"
	"time"

	"nuon-api/core/database/dbtest"
	"nuon-api/core/errors"
	"nuon-api/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBooking(userID, mentorID, slotID uuid.UUID) *entity.Booking {
	return &entity.Booking{
		Reference:      uuid.NewString()[:8],
		UserID:         userID,
		MentorID:       mentorID,
		AvailabilityID: slotID,
		Status:         entity.BookingStatusPending,
		Currency:       "INR",
		MeetingType:    "in-person",
	}
}

func TestCreateBooking_ActiveIndexRejectsSecondBooking(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	// Neither party has a users row.
	mentor, user := uuid.New(), uuid.New()
	slotID := dbtest.InsertSlot(t, db, mentor, time.Now().Add(time.Hour), 3)

	err := repo.Transaction(ctx, func(tx BookingTx) error {
		_, err := tx.CreateBooking(ctx, pendingBooking(user, mentor, slotID))
		return err
	})
	require.NoError(t, err)

	// Skips HasActiveBooking, so only the partial unique index stands in the way.
	err = repo.Transaction(ctx, func(tx BookingTx) error {
		_, err := tx.CreateBooking(ctx, pendingBooking(user, mentor, slotID))
		return err
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrDuplicateBooking, errors.CodeOf(err))
}

func TestCreateBooking_CancelledBookingAllowsRebook(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	mentor, user := uuid.New(), uuid.New()
	slotID := dbtest.InsertSlot(t, db, mentor, time.Now().Add(time.Hour), 3)

	err := repo.Transaction(ctx, func(tx BookingTx) error {
		first, err := tx.CreateBooking(ctx, pendingBooking(user, mentor, slotID))
		if err != nil {
			return err
		}
		if _, err := tx.UpdateBookingStatus(ctx, first.ID, entity.BookingStatusCancelled); err != nil {
			return err
		}
		_, err = tx.CreateBooking(ctx, pendingBooking(user, mentor, slotID))
		return err
	})
	require.NoError(t, err)
}

func TestAdjustSlotBookings_CapacityCheck(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	slotID := dbtest.InsertSlot(t, db, uuid.New(), time.Now().Add(time.Hour), 1)

	err := repo.Transaction(ctx, func(tx BookingTx) error {
		return tx.AdjustSlotBookings(ctx, slotID, 2)
	})
	require.Error(t, err)

	err = repo.Transaction(ctx, func(tx BookingTx) error {
		return tx.AdjustSlotBookings(ctx, slotID, -1)
	})
	require.NoError(t, err)

	var current int
	require.NoError(t, db.GetContext(ctx, &current, `SELECT current_bookings FROM availability_slots WHERE id = $1`, slotID))
	assert.Equal(t, 0, current)
}
