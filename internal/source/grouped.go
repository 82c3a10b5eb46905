// Package source parses timeline data inputs into model.Interval
// records. Each parser resolves the "ongoing" end-date sentinel against
// an explicit reference instant supplied by the caller; nothing in this
// package consults the wall clock on its own.
package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	appLog "ganttgen/internal/log"
	"ganttgen/internal/model"
)

// OngoingMarker is the end-date sentinel meaning "still in progress as
// of the reference instant".
const OngoingMarker = "-"

const dateLayout = "2006-01-02"

// ParseGrouped reads the grouped text format:
//
//	Skylab
//	Skylab Workshop, 1973-05-14, 1979-07-11
//	ISS US
//	Unity, 1998-12-06, -
//
// A line whose last two tokens are dates (or a date and the ongoing
// marker) is an entry under the most recent group header; any other
// non-blank line is a group header. Entries before a header get the
// "unassigned" group. The ongoing marker resolves to ref.
func ParseGrouped(r io.Reader, ref time.Time, loc *time.Location) ([]model.Interval, error) {
	if loc == nil {
		loc = time.UTC
	}

	intervals := make([]model.Interval, 0)
	group := model.UnassignedGroup

	sc := bufio.NewScanner(decodingReader(r))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) >= 3 {
			startTok := strings.TrimSuffix(tokens[len(tokens)-2], ",")
			endTok := tokens[len(tokens)-1]
			start, startErr := time.ParseInLocation(dateLayout, startTok, loc)
			if startErr == nil {
				var end time.Time
				if endTok == OngoingMarker {
					end = ref
				} else {
					var endErr error
					end, endErr = time.ParseInLocation(dateLayout, endTok, loc)
					if endErr != nil {
						return nil, fmt.Errorf("line %d: bad end date %q: %w", lineNo, endTok, endErr)
					}
				}

				label := strings.ReplaceAll(strings.Join(tokens[:len(tokens)-2], " "), ",", "")
				intervals = append(intervals, model.Interval{
					Group: group,
					Label: strings.TrimSpace(label),
					Start: start,
					End:   end,
				})
				continue
			}
		}

		// Anything else is a group header.
		group = line
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	appLog.Debug("grouped parse completed", "entries", len(intervals))
	return intervals, nil
}
