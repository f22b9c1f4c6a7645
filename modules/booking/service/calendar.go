package service

import (
	"fmt"
	"strings"
	"time"

	"nuon-api/core/utils"
	"nuon-api/modules/booking/entity"
)

const (
	calendarProductID   = "-//Nuon//Mentor Bookings//EN"
	calendarContentType = "text/calendar; charset=utf-8"
	icsTimeLayout       = "20060102T150405Z"
	icsLineLimit        = 75
)

// CalendarFileKey is the object key of a booking's calendar file.
func CalendarFileKey(booking *entity.Booking) string {
	return fmt.Sprintf("bookings/%s.ics", booking.ID)
}

// RenderCalendar renders a single-event iCalendar (RFC 5545) document for the
// booking. Lines end in CRLF and are folded at 75 octets.
func RenderCalendar(d *entity.BookingDetail, stamp time.Time) []byte {
	status := "TENTATIVE"
	switch d.Status {
	case entity.BookingStatusConfirmed, entity.BookingStatusCompleted:
		status = "CONFIRMED"
	case entity.BookingStatusCancelled:
		status = "CANCELLED"
	}

	description := d.SlotDescription
	if link := utils.StringValue(d.MeetingLink); link != "" {
		if description != "" {
			description += "\n\n"
		}
		description += "Join: " + link
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + calendarProductID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + d.ID.String() + "@nuon",
		"DTSTAMP:" + stamp.UTC().Format(icsTimeLayout),
		"DTSTART:" + d.SlotStartTime.UTC().Format(icsTimeLayout),
		"DTEND:" + d.SlotEndTime.UTC().Format(icsTimeLayout),
		"SUMMARY:" + escapeText(d.SlotTitle),
		"STATUS:" + status,
	}
	if description != "" {
		lines = append(lines, "DESCRIPTION:"+escapeText(description))
	}
	if loc := utils.StringValue(d.SlotLocation); loc != "" {
		lines = append(lines, "LOCATION:"+escapeText(loc))
	} else if link := utils.StringValue(d.MeetingLink); link != "" {
		lines = append(lines, "URL:"+link)
	}
	if email := utils.StringValue(d.MentorEmail); email != "" {
		lines = append(lines, fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s", escapeParam(d.MentorName), email))
	}
	if email := utils.StringValue(d.UserEmail); email != "" {
		lines = append(lines, fmt.Sprintf("ATTENDEE;CN=%s;ROLE=REQ-PARTICIPANT:mailto:%s", escapeParam(d.UserName), email))
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(foldLine(line))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// escapeParam quotes a parameter value when it contains separators.
func escapeParam(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	if strings.ContainsAny(s, ";:,") {
		return `"` + s + `"`
	}
	return s
}

// foldLine splits a content line into 75-octet chunks without cutting a
// multi-byte rune. Continuation lines start with a single space.
func foldLine(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}

	var b strings.Builder
	limit := icsLineLimit
	width := 0
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 0
			limit = icsLineLimit - 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}
