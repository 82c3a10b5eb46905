package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsBody(lines ...string) []byte {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ganttgen test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}

func TestParseICS_SingleEvent(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:1",
		"SUMMARY:Expedition 1",
		"CATEGORIES:ISS",
		"DTSTART:20001102T000000Z",
		"DTEND:20010321T000000Z",
		"END:VEVENT",
	)

	got, err := ParseICS(body, ICSOptions{SourceName: "launches", Loc: time.UTC})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "ISS", got[0].Group, "CATEGORIES wins over source name")
	assert.Equal(t, "Expedition 1", got[0].Label)
	assert.Equal(t, time.Date(2000, 11, 2, 0, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, time.Date(2001, 3, 21, 0, 0, 0, 0, time.UTC), got[0].End)
}

func TestParseICS_SourceNameFallback(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:1",
		"SUMMARY:Crew Dragon Demo-2",
		"DTSTART:20200530T000000Z",
		"DTEND:20200802T000000Z",
		"END:VEVENT",
	)

	got, err := ParseICS(body, ICSOptions{SourceName: "launches", Loc: time.UTC})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "launches", got[0].Group)
}

func TestParseICS_RecurringEvent(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:2",
		"SUMMARY:Resupply",
		"CATEGORIES:ISS",
		"DTSTART:20010101T000000Z",
		"DTEND:20010102T000000Z",
		"RRULE:FREQ=MONTHLY;COUNT=3",
		"END:VEVENT",
	)

	opts := ICSOptions{
		SourceName: "launches",
		Loc:        time.UTC,
		RangeStart: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2001, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	got, err := ParseICS(body, opts)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, month := range []time.Month{time.January, time.February, time.March} {
		assert.Equal(t, time.Date(2001, month, 1, 0, 0, 0, 0, time.UTC), got[i].Start)
		assert.Equal(t, 24*time.Hour, got[i].End.Sub(got[i].Start), "duration preserved")
	}
}

func TestParseICS_RecurringWithoutRangeIsSkipped(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:2",
		"SUMMARY:Resupply",
		"DTSTART:20010101T000000Z",
		"DTEND:20010102T000000Z",
		"RRULE:FREQ=MONTHLY;COUNT=3",
		"END:VEVENT",
	)

	got, err := ParseICS(body, ICSOptions{SourceName: "launches", Loc: time.UTC})
	require.NoError(t, err)
	assert.Empty(t, got, "recurring event without a range is dropped, not fatal")
}

func TestParseICS_Empty(t *testing.T) {
	_, err := ParseICS(nil, ICSOptions{})
	require.Error(t, err)
}
