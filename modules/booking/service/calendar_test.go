package service

import (
	"strings"
	"testing"
	"time"

	"nuon-api/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestRenderCalendar(t *testing.T) {
	start := time.Date(2026, 11, 3, 14, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	detail := &entity.BookingDetail{
		Booking: entity.Booking{
			ID:          uuid.MustParse("6b1f0c2a-2d5e-4c1a-9d1e-0a0b0c0d0e0f"),
			Status:      entity.BookingStatusConfirmed,
			MeetingLink: strPtr("https://zoom.example/j/42"),
		},
		MentorName:      "Asha, RN",
		MentorEmail:     strPtr("asha@example.com"),
		UserName:        "Ben",
		UserEmail:       strPtr("ben@example.com"),
		SlotTitle:       "ICU; night shift, basics",
		SlotDescription: "Bring questions",
		SlotStartTime:   start,
		SlotEndTime:     start.Add(time.Hour),
	}

	ics := string(RenderCalendar(detail, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(ics, "END:VEVENT\r\nEND:VCALENDAR\r\n"))
	assert.Contains(t, ics, "UID:6b1f0c2a-2d5e-4c1a-9d1e-0a0b0c0d0e0f@nuon\r\n")
	assert.Contains(t, ics, "DTSTAMP:20261001T000000Z\r\n")
	assert.Contains(t, ics, "DTSTART:20261103T090000Z\r\n")
	assert.Contains(t, ics, "DTEND:20261103T100000Z\r\n")
	assert.Contains(t, ics, `SUMMARY:ICU\; night shift\, basics`)
	assert.Contains(t, ics, `DESCRIPTION:Bring questions\n\nJoin: https://zoom.example/j/42`)
	assert.Contains(t, ics, "STATUS:CONFIRMED\r\n")
	assert.Contains(t, ics, "URL:https://zoom.example/j/42\r\n")
	assert.Contains(t, ics, `ORGANIZER;CN="Asha, RN":mailto:asha@example.com`)
	assert.Contains(t, ics, "ATTENDEE;CN=Ben;ROLE=REQ-PARTICIPANT:mailto:ben@example.com")

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, line)
	}
}

func TestRenderCalendarPendingInPerson(t *testing.T) {
	detail := &entity.BookingDetail{
		Booking:       entity.Booking{ID: uuid.New(), Status: entity.BookingStatusPending},
		SlotTitle:     "Ward rounds",
		SlotLocation:  strPtr("Block C, Room 4"),
		SlotStartTime: time.Now().Add(time.Hour),
		SlotEndTime:   time.Now().Add(2 * time.Hour),
	}

	ics := string(RenderCalendar(detail, time.Now()))
	assert.Contains(t, ics, "STATUS:TENTATIVE\r\n")
	assert.Contains(t, ics, `LOCATION:Block C\, Room 4`)
	assert.NotContains(t, ics, "DESCRIPTION:")
	assert.NotContains(t, ics, "ORGANIZER")
}

func TestFoldLine(t *testing.T) {
	line := "DESCRIPTION:" + strings.Repeat("é", 80)
	folded := foldLine(line)

	parts := strings.Split(folded, "\r\n")
	assert.Greater(t, len(parts), 1)
	assert.LessOrEqual(t, len(parts[0]), 75)
	for _, p := range parts[1:] {
		assert.True(t, strings.HasPrefix(p, " "))
		assert.LessOrEqual(t, len(p), 75)
	}
	assert.Equal(t, line, strings.ReplaceAll(folded, "\r\n ", ""))
	assert.Equal(t, "SHORT:x", foldLine("SHORT:x"))
}
