package render

import (
	"bufio"
	"io"

	"ganttgen/internal/model"
)

// WriteGroupedText emits the normalized grouped data file: one header
// line per group in display order, the group's entries beneath it in
// allocation order, a blank line after each group. The output parses
// back through source.ParseGrouped, so it doubles as a cleaned-up copy
// of whatever mixture of inputs produced the schedule.
func WriteGroupedText(w io.Writer, placements []model.Placement, rowKeys []model.RowKey) error {
	byGroup := make(map[string][]model.Placement)
	for _, p := range placements {
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}

	// Unique groups in row-key order.
	groups := make([]string, 0, len(rowKeys))
	seen := make(map[string]bool, len(rowKeys))
	for _, key := range rowKeys {
		if !seen[key.Group] {
			seen[key.Group] = true
			groups = append(groups, key.Group)
		}
	}

	bw := bufio.NewWriter(w)
	for _, group := range groups {
		if _, err := bw.WriteString(group + "\n"); err != nil {
			return err
		}
		for _, p := range byGroup[group] {
			line := p.Label + ", " + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "\n"
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
