package model

import "time"

// UnassignedGroup is the group applied to entries whose source does not
// name one (e.g., records appearing before any group header line).
const UnassignedGroup = "unassigned"

// Interval is one scheduled item on the timeline: a labeled time range
// belonging to a group. Intervals are immutable value records produced
// by a parsing source; lane allocation only reads Group/Start/End.
//
// Start is inclusive. End is exclusive for lane-occupancy purposes: an
// interval reserving a lane until E does not occupy it at instant E, so
// a later interval starting exactly at E may reuse the lane. Open-ended
// ("ongoing") entries are resolved by the parser against an explicit
// reference instant before they reach the allocator.
type Interval struct {
	Group string
	Label string
	Start time.Time
	End   time.Time
}

// Placement is an Interval plus its allocated lane within the group.
type Placement struct {
	Interval
	Lane int
}

// RowKey identifies one horizontal row of the chart layout: a lane
// within a group. Row keys are totally ordered by group rank (from the
// caller-supplied group ordering, unlisted groups last in encounter
// order), then by ascending lane.
type RowKey struct {
	Group string
	Lane  int
}
