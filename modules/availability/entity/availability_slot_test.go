package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	slot := &AvailabilitySlot{StartTime: base, EndTime: base.Add(time.Hour)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"starts during", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"ends during", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"contains", base.Add(-time.Hour), base.Add(2 * time.Hour), true},
		{"inside", base.Add(10 * time.Minute), base.Add(20 * time.Minute), true},
		{"identical", base, base.Add(time.Hour), true},
		{"adjacent after", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"adjacent before", base.Add(-time.Hour), base, false},
		{"disjoint", base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, slot.Overlaps(tc.start, tc.end))
		})
	}
}

func TestIsBookable(t *testing.T) {
	now := time.Now()
	slot := &AvailabilitySlot{StartTime: now.Add(time.Hour), MaxBookings: 2, CurrentBookings: 1, IsActive: true}
	assert.True(t, slot.IsBookable(now))

	slot.CurrentBookings = 2
	assert.False(t, slot.IsBookable(now))

	slot.CurrentBookings = 0
	slot.IsActive = false
	assert.False(t, slot.IsBookable(now))

	slot.IsActive = true
	slot.StartTime = now.Add(-time.Minute)
	assert.False(t, slot.IsBookable(now))
}
