package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttgen/internal/model"
)

// at converts an integer time unit into a concrete instant, so test
// cases can be written compactly against the examples.
func at(unit int) time.Time {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(unit) * time.Hour)
}

func iv(group, label string, start, end int) model.Interval {
	return model.Interval{Group: group, Label: label, Start: at(start), End: at(end)}
}

func TestAssignLanes_Empty(t *testing.T) {
	placements, rows, err := AssignLanes(nil, []string{"X"})
	require.NoError(t, err)
	assert.Empty(t, placements)
	assert.Empty(t, rows)
}

func TestAssignLanes_FirstFitReuse(t *testing.T) {
	// a and b overlap, c starts after a ends and reuses lane 0.
	in := []model.Interval{
		iv("X", "a", 1, 5),
		iv("X", "b", 3, 7),
		iv("X", "c", 6, 8),
	}

	placements, rows, err := AssignLanes(in, []string{"X"})
	require.NoError(t, err)
	require.Len(t, placements, 3)

	assert.Equal(t, 0, placements[0].Lane, "a")
	assert.Equal(t, 1, placements[1].Lane, "b overlaps a")
	assert.Equal(t, 0, placements[2].Lane, "c starts after a ended")

	assert.Equal(t, []model.RowKey{{Group: "X", Lane: 0}, {Group: "X", Lane: 1}}, rows)
}

func TestAssignLanes_GroupOrderRespected(t *testing.T) {
	in := []model.Interval{
		iv("X", "x1", 1, 2),
		iv("Y", "y1", 1, 2),
	}

	_, rows, err := AssignLanes(in, []string{"Y", "X"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowKey{{Group: "Y", Lane: 0}, {Group: "X", Lane: 0}}, rows)
}

func TestAssignLanes_UnlistedGroupsSortLast(t *testing.T) {
	in := []model.Interval{
		iv("B", "b1", 1, 2),
		iv("A", "a1", 1, 2),
		iv("Listed", "l1", 1, 2),
	}

	_, rows, err := AssignLanes(in, []string{"Listed"})
	require.NoError(t, err)

	// Listed first, then unlisted groups by first appearance (B before A).
	assert.Equal(t, []model.RowKey{
		{Group: "Listed", Lane: 0},
		{Group: "B", Lane: 0},
		{Group: "A", Lane: 0},
	}, rows)
}

func TestAssignLanes_GroupOrderMayNameAbsentGroups(t *testing.T) {
	in := []model.Interval{iv("X", "x1", 1, 2)}

	_, rows, err := AssignLanes(in, []string{"Ghost", "X", "X"})
	require.NoError(t, err)
	assert.Equal(t, []model.RowKey{{Group: "X", Lane: 0}}, rows)
}

func TestAssignLanes_GroupsIndependent(t *testing.T) {
	// Identical time ranges in different groups both get lane 0.
	in := []model.Interval{
		iv("X", "x1", 1, 5),
		iv("Y", "y1", 1, 5),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placements[0].Lane)
	assert.Equal(t, 0, placements[1].Lane)
}

func TestAssignLanes_InputOrderBeatsStartOrder(t *testing.T) {
	// The later-starting interval is listed first and claims lane 0.
	in := []model.Interval{
		iv("X", "late", 5, 10),
		iv("X", "early", 1, 6),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placements[0].Lane, "first listed gets first pick")
	assert.Equal(t, 1, placements[1].Lane)
}

func TestAssignLanes_EndIsNonOccupying(t *testing.T) {
	// b starts exactly when a ends: lane 0 is free again.
	in := []model.Interval{
		iv("X", "a", 1, 5),
		iv("X", "b", 5, 9),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placements[1].Lane)

	// One unit earlier the lane is still occupied.
	in[1] = iv("X", "b", 4, 9)
	placements, _, err = AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, placements[1].Lane)
}

func TestAssignLanes_ZeroLengthInterval(t *testing.T) {
	in := []model.Interval{
		iv("X", "a", 1, 5),
		iv("X", "point", 5, 5),
	}

	placements, rows, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placements[1].Lane, "zero-length at a's end reuses lane 0")
	assert.Equal(t, []model.RowKey{{Group: "X", Lane: 0}}, rows)
}

func TestAssignLanes_LaneStaysReservedForLongRun(t *testing.T) {
	// A long-running interval holds lane 0 for its whole duration; the
	// short intervals after it stack above even though they do not
	// overlap each other.
	in := []model.Interval{
		iv("X", "long", 0, 100),
		iv("X", "s1", 1, 2),
		iv("X", "s2", 3, 4),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, placements[0].Lane)
	assert.Equal(t, 1, placements[1].Lane)
	assert.Equal(t, 1, placements[2].Lane, "s2 reuses lane 1 after s1 ends")
}

func TestAssignLanes_ReservationSupersededByLatestEnd(t *testing.T) {
	// A short interval on lane 0 must not shrink the reservation left
	// by an earlier, longer one.
	in := []model.Interval{
		iv("X", "long", 0, 10),
		iv("X", "short", 0, 2), // lane 1
		iv("X", "mid", 3, 4),   // lane 1 free again at 3
		iv("X", "probe", 5, 6), // lane 0 still held by long
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, placements[2].Lane)
	assert.Equal(t, 1, placements[3].Lane, "lane 0 reserved until 10")
}

func TestAssignLanes_NoOverlapWithinLane(t *testing.T) {
	in := []model.Interval{
		iv("X", "a", 0, 4),
		iv("X", "b", 1, 3),
		iv("X", "c", 2, 6),
		iv("X", "d", 3, 5),
		iv("X", "e", 4, 8),
		iv("Y", "f", 0, 9),
		iv("Y", "g", 2, 3),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)

	for i, p := range placements {
		assert.GreaterOrEqual(t, p.Lane, 0)
		for _, q := range placements[:i] {
			if q.Group != p.Group || q.Lane != p.Lane {
				continue
			}
			overlap := p.Start.Before(q.End) && q.Start.Before(p.End)
			assert.False(t, overlap, "%s and %s share lane %d", q.Label, p.Label, p.Lane)
		}
	}
}

func TestAssignLanes_MinimalFirstFit(t *testing.T) {
	in := []model.Interval{
		iv("X", "a", 0, 4),
		iv("X", "b", 1, 3),
		iv("X", "c", 2, 6),
		iv("X", "d", 3, 5),
	}

	placements, _, err := AssignLanes(in, nil)
	require.NoError(t, err)

	// No smaller lane may have been free at each interval's start given
	// processing-order precedence.
	for i, p := range placements {
		for lane := 0; lane < p.Lane; lane++ {
			free := true
			for _, q := range placements[:i] {
				if q.Group == p.Group && q.Lane == lane && q.End.After(p.Start) {
					free = false
					break
				}
			}
			assert.False(t, free, "%s: lane %d was free but %d assigned", p.Label, lane, p.Lane)
		}
	}
}

func TestAssignLanes_Deterministic(t *testing.T) {
	in := []model.Interval{
		iv("X", "a", 0, 4),
		iv("Y", "b", 1, 3),
		iv("X", "c", 2, 6),
		iv("Z", "d", 3, 5),
	}
	order := []string{"Y", "X"}

	p1, r1, err := AssignLanes(in, order)
	require.NoError(t, err)
	p2, r2, err := AssignLanes(in, order)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, r1, r2)
}

func TestAssignLanes_InvalidInterval(t *testing.T) {
	in := []model.Interval{
		iv("X", "ok", 1, 2),
		iv("X", "bad", 5, 3),
	}

	placements, rows, err := AssignLanes(in, nil)
	require.Error(t, err)
	assert.Nil(t, placements)
	assert.Nil(t, rows)

	var invalid *InvalidIntervalError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "X", invalid.Group)
	assert.Equal(t, "bad", invalid.Label)
	assert.Contains(t, invalid.Error(), `"bad"`)
}

func TestAssignLanesSkipInvalid_KeepsAccounting(t *testing.T) {
	in := []model.Interval{
		iv("X", "a", 1, 5),
		iv("X", "bad", 9, 2),
		iv("X", "b", 3, 7),
	}

	placements, rows, errs := AssignLanesSkipInvalid(in, nil)
	require.Len(t, errs, 1)
	require.Len(t, placements, 2)

	// The skipped record must not have reserved a lane: b still lands
	// on lane 1 purely because of a.
	assert.Equal(t, 0, placements[0].Lane)
	assert.Equal(t, 1, placements[1].Lane)
	assert.Equal(t, []model.RowKey{{Group: "X", Lane: 0}, {Group: "X", Lane: 1}}, rows)
}
