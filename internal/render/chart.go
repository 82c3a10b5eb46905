// Package render turns an allocated schedule (placements plus row-key
// ordering) into chart artifacts. The allocator decides layout; this
// package only draws it.
package render

import (
	"strings"
	"time"

	"ganttgen/internal/model"
)

// Chart is everything a sink needs to draw one timeline.
type Chart struct {
	Title  string
	Footer string

	// Placements and RowKeys come from the lane allocator; RowKeys are
	// in display order, first row at the top.
	Placements []model.Placement
	RowKeys    []model.RowKey

	// Colors maps group to bar color; DefaultColor covers the rest.
	Colors       map[string]string
	DefaultColor string

	Width       int
	Height      int
	MaxLabelLen int
}

// rowView is one horizontal chart row with its bars placed as
// fractions of the full time range.
type rowView struct {
	Key        model.RowKey
	GroupLabel string // set only on a group's lane-0 row
	Bars       []barView
}

type barView struct {
	Label    string
	Color    string
	LeftPct  float64
	WidthPct float64
	Start    time.Time
	End      time.Time
}

// timeRange returns the extent of all placements. Degenerate input
// (no placements, or all at one instant) gets a one-day span so the
// fractional math stays finite.
func (c Chart) timeRange() (time.Time, time.Time) {
	if len(c.Placements) == 0 {
		now := time.Now()
		return now, now.Add(24 * time.Hour)
	}
	min, max := c.Placements[0].Start, c.Placements[0].End
	for _, p := range c.Placements[1:] {
		if p.Start.Before(min) {
			min = p.Start
		}
		if p.End.After(max) {
			max = p.End
		}
	}
	if !max.After(min) {
		max = min.Add(24 * time.Hour)
	}
	return min, max
}

func (c Chart) color(group string) string {
	if col, ok := c.Colors[group]; ok {
		return col
	}
	if c.DefaultColor != "" {
		return c.DefaultColor
	}
	return "#000000"
}

// rows builds the per-row view in display order. The group label is
// shown once per group, on its lane-0 row.
func (c Chart) rows() []rowView {
	min, max := c.timeRange()
	span := max.Sub(min).Seconds()

	byRow := make(map[model.RowKey][]barView)
	for _, p := range c.Placements {
		bar := barView{
			Label:    TruncateLabel(LinebreakLabel(p.Label), c.MaxLabelLen),
			Color:    c.color(p.Group),
			LeftPct:  100 * p.Start.Sub(min).Seconds() / span,
			WidthPct: 100 * p.End.Sub(p.Start).Seconds() / span,
			Start:    p.Start,
			End:      p.End,
		}
		if bar.WidthPct < 0.2 {
			// Keep zero-length entries visible as slivers.
			bar.WidthPct = 0.2
		}
		key := model.RowKey{Group: p.Group, Lane: p.Lane}
		byRow[key] = append(byRow[key], bar)
	}

	out := make([]rowView, 0, len(c.RowKeys))
	for _, key := range c.RowKeys {
		rv := rowView{Key: key, Bars: byRow[key]}
		if key.Lane == 0 {
			rv.GroupLabel = key.Group
		}
		out = append(out, rv)
	}
	return out
}

// yearTicks returns evenly spaced year boundaries inside the chart's
// time range, thinned so at most maxTicks remain.
func (c Chart) yearTicks(maxTicks int) []tickView {
	min, max := c.timeRange()
	span := max.Sub(min).Seconds()

	first := min.Year()
	if time.Date(first, 1, 1, 0, 0, 0, 0, min.Location()).Before(min) {
		first++
	}
	last := max.Year()

	step := 1
	if maxTicks > 0 {
		for (last-first)/step+1 > maxTicks {
			step++
		}
	}

	ticks := make([]tickView, 0)
	for y := first; y <= last; y += step {
		at := time.Date(y, 1, 1, 0, 0, 0, 0, min.Location())
		if at.Before(min) || at.After(max) {
			continue
		}
		ticks = append(ticks, tickView{
			Year:    y,
			LeftPct: 100 * at.Sub(min).Seconds() / span,
		})
	}
	return ticks
}

type tickView struct {
	Year    int
	LeftPct float64
}

// LinebreakLabel inserts a line break before every space so long names
// stack instead of spilling over neighbouring bars.
func LinebreakLabel(name string) string {
	return strings.ReplaceAll(name, " ", "\n ")
}

// TruncateLabel shortens every line of name to at most max characters,
// replacing the overflow with an ellipsis. Non-positive max disables
// truncation.
func TruncateLabel(name string, max int) string {
	if max <= 0 {
		return name
	}
	lines := strings.Split(name, "\n")
	for i, line := range lines {
		if len(line) > max {
			cut := max - 3
			if cut < 1 {
				cut = 1
			}
			lines[i] = line[:cut] + "..."
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
