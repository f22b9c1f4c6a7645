package repository

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsActiveBookingConflict(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "bookings_active_user_slot_uidx"}
	assert.True(t, isActiveBookingConflict(dup))
	assert.True(t, isActiveBookingConflict(fmt.Errorf("insert: %w", dup)))

	assert.False(t, isActiveBookingConflict(&pq.Error{Code: "23505", Constraint: "bookings_reference_key"}))
	assert.False(t, isActiveBookingConflict(&pq.Error{Code: "23514", Constraint: "bookings_active_user_slot_uidx"}))
	assert.False(t, isActiveBookingConflict(fmt.Errorf("boom")))
}
