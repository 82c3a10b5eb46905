// Package timeline computes the row layout of a Gantt chart: it packs
// each group's intervals into numbered lanes so that overlapping bars
// never share a lane, and derives the vertical row ordering consumed by
// the rendering sinks.
package timeline

import (
	"fmt"
	"time"

	"ganttgen/internal/model"
)

// InvalidIntervalError reports a record whose start is after its end
// (after any open-ended sentinel has been resolved by the parser). The
// offending record is identified in full so report generation can name
// it before aborting.
type InvalidIntervalError struct {
	Group string
	Label string
	Start time.Time
	End   time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval %q in group %q: start %s is after end %s",
		e.Label, e.Group, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// groupState tracks lane reservations for one group while its intervals
// are processed. reserved maps lane number to the latest end instant
// seen on that lane, so occupancy at s is just reserved[lane].After(s).
type groupState struct {
	reserved map[int]time.Time
	maxLane  int
}

// AssignLanes assigns every interval a non-negative lane within its
// group and returns the placements together with the global row-key
// ordering.
//
// Intervals are processed in input order, not sorted by start: earlier
// entries get first pick of lane 0, which callers use to express
// precedence. Within a group the smallest lane free at the interval's
// start is chosen (first-fit). A lane reserved until E counts as free
// at exactly E; zero-length intervals are valid. Lanes are never
// compacted after the fact: a long-running interval keeps its lane
// reserved for its whole duration even when later short intervals could
// have been packed tighter.
//
// Row keys list every (group, lane) pair in display order: groups from
// groupOrder first, then groups absent from it in order of first
// appearance in the input, each with lanes 0..maxLane ascending. Groups
// contributing no intervals contribute no row keys.
//
// The first interval with Start after End aborts the call with an
// *InvalidIntervalError. Use AssignLanesSkipInvalid to drop such
// records instead.
func AssignLanes(intervals []model.Interval, groupOrder []string) ([]model.Placement, []model.RowKey, error) {
	placements, rows, errs := assign(intervals, groupOrder, false)
	if len(errs) > 0 {
		return nil, nil, errs[0]
	}
	return placements, rows, nil
}

// AssignLanesSkipInvalid behaves like AssignLanes but skips invalid
// records, returning one *InvalidIntervalError per skipped record.
// Skipped records assign no lane and do not disturb lane accounting for
// the rest of their group.
func AssignLanesSkipInvalid(intervals []model.Interval, groupOrder []string) ([]model.Placement, []model.RowKey, []error) {
	return assign(intervals, groupOrder, true)
}

func assign(intervals []model.Interval, groupOrder []string, skipInvalid bool) ([]model.Placement, []model.RowKey, []error) {
	states := make(map[string]*groupState)
	seen := make([]string, 0) // groups in first-appearance order
	placements := make([]model.Placement, 0, len(intervals))
	var errs []error

	for _, iv := range intervals {
		if iv.Start.After(iv.End) {
			errs = append(errs, &InvalidIntervalError{
				Group: iv.Group,
				Label: iv.Label,
				Start: iv.Start,
				End:   iv.End,
			})
			if skipInvalid {
				continue
			}
			return nil, nil, errs
		}

		st := states[iv.Group]
		if st == nil {
			st = &groupState{reserved: make(map[int]time.Time), maxLane: -1}
			states[iv.Group] = st
			seen = append(seen, iv.Group)
		}

		// First fit: smallest lane whose reservation has ended by Start.
		// Occupied means the reserved end is strictly after Start, so a
		// bar ending exactly at Start does not block reuse.
		lane := 0
		for {
			end, taken := st.reserved[lane]
			if !taken || !end.After(iv.Start) {
				break
			}
			lane++
		}

		// Supersede the reservation only if this interval extends it;
		// a lane stays reserved until the latest end seen on it.
		if end, ok := st.reserved[lane]; !ok || iv.End.After(end) {
			st.reserved[lane] = iv.End
		}
		if lane > st.maxLane {
			st.maxLane = lane
		}

		placements = append(placements, model.Placement{Interval: iv, Lane: lane})
	}

	rows := rowKeys(states, seen, groupOrder)
	return placements, rows, errs
}

// rowKeys builds the global display ordering: listed groups in caller
// order, then the remaining groups by first appearance.
func rowKeys(states map[string]*groupState, seen []string, groupOrder []string) []model.RowKey {
	ordered := make([]string, 0, len(states))
	listed := make(map[string]bool, len(groupOrder))
	for _, g := range groupOrder {
		if listed[g] {
			continue
		}
		listed[g] = true
		if _, ok := states[g]; ok {
			ordered = append(ordered, g)
		}
	}
	for _, g := range seen {
		if !listed[g] {
			ordered = append(ordered, g)
		}
	}

	rows := make([]model.RowKey, 0)
	for _, g := range ordered {
		st := states[g]
		for lane := 0; lane <= st.maxLane; lane++ {
			rows = append(rows, model.RowKey{Group: g, Lane: lane})
		}
	}
	return rows
}
