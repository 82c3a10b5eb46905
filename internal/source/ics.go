package source

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "ganttgen/internal/log"
	"ganttgen/internal/model"
)

// ICSOptions controls how a calendar feed is turned into intervals.
type ICSOptions struct {
	// SourceName is the fallback group for events without CATEGORIES.
	SourceName string
	// Loc is the display timezone; nil means UTC.
	Loc *time.Location
	// RangeStart / RangeEnd bound recurrence expansion. Both must be
	// set when the feed contains RRULE events.
	RangeStart time.Time
	RangeEnd   time.Time
	// MaxOccurrences caps expansion per recurring event; zero means 1000.
	MaxOccurrences int
}

const defaultMaxOccurrences = 1000

// ParseICS turns an iCalendar payload into intervals. Each VEVENT maps
// to one interval (group from its first CATEGORIES value, else
// SourceName); events with an RRULE are expanded into one interval per
// occurrence inside [RangeStart, RangeEnd], preserving the original
// duration and honoring EXDATE.
func ParseICS(body []byte, opts ICSOptions) ([]model.Interval, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	loc := opts.Loc
	if loc == nil {
		loc = time.UTC
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	intervals := make([]model.Interval, 0)
	for _, ve := range cal.Events() {
		evs, perr := eventIntervals(ve, opts, loc)
		if perr != nil {
			// Skip the broken event, keep the rest of the feed.
			appLog.Warn("ics: skipping event", "source", opts.SourceName, "reason", perr.Error())
			continue
		}
		intervals = append(intervals, evs...)
	}

	appLog.Info("ics parse completed", "source", opts.SourceName, "entries", len(intervals))
	return intervals, nil
}

func eventIntervals(ve *ical.VEvent, opts ICSOptions, loc *time.Location) ([]model.Interval, error) {
	label := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		label = p.Value
	}
	if label == "" {
		return nil, errors.New("event has no SUMMARY")
	}

	group := opts.SourceName
	if p := ve.GetProperty("CATEGORIES"); p != nil && p.Value != "" {
		group = strings.TrimSpace(strings.Split(p.Value, ",")[0])
	}
	if group == "" {
		group = model.UnassignedGroup
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional; a dateless event is a zero-length marker.
		end = start
	}

	base := model.Interval{
		Group: group,
		Label: label,
		Start: start.In(loc),
		End:   end.In(loc),
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		return []model.Interval{base}, nil
	}
	return expandRecurring(ve, base, rruleProp.Value, opts, loc)
}

// expandRecurring returns one interval per RRULE occurrence inside the
// configured range, each with the base event's duration.
func expandRecurring(ve *ical.VEvent, base model.Interval, raw string, opts ICSOptions, loc *time.Location) ([]model.Interval, error) {
	if opts.RangeStart.IsZero() || opts.RangeEnd.IsZero() {
		return nil, errors.New("recurring event but no expansion range configured")
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	r.DTStart(base.Start)

	var set rrule.Set
	set.RRule(r)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, perr := parseICSTime(strings.TrimSpace(part), loc); perr == nil {
				set.ExDate(t.In(base.Start.Location()))
			}
		}
	}

	dur := base.End.Sub(base.Start)
	times := set.Between(opts.RangeStart.In(base.Start.Location()), opts.RangeEnd.In(base.Start.Location()), true)
	if len(times) > opts.MaxOccurrences {
		appLog.Warn("ics: recurrence expansion truncated",
			"label", base.Label, "cap", opts.MaxOccurrences)
		times = times[:opts.MaxOccurrences]
	}

	out := make([]model.Interval, 0, len(times))
	for _, start := range times {
		out = append(out, model.Interval{
			Group: base.Group,
			Label: base.Label,
			Start: start.In(loc),
			End:   start.Add(dur).In(loc),
		})
	}
	return out, nil
}

// parseICSTime handles the basic DATE / DATE-TIME / UTC forms seen in
// EXDATE values.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
