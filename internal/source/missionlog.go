package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	appLog "ganttgen/internal/log"
	"ganttgen/internal/model"
	"ganttgen/internal/timeline"
)

// MissionLogOptions controls mission-log TSV parsing.
type MissionLogOptions struct {
	// Ref resolves missions with no usable end date ("ongoing").
	Ref time.Time
	// Loc is the timezone dates parse in; nil means UTC.
	Loc *time.Location
	// MinDuration culls missions shorter than this; zero keeps all.
	MinDuration time.Duration
	// Renames rewrite project and ship name prefixes for display.
	Renames []timeline.RenameRule
}

// Column names expected in the mission-log header line.
const (
	colProject  = "Project"
	colShip     = "Ship"
	colLaunch   = "LDate"
	colEnd      = "EDate"
	colDuration = "Dur"
)

// missionDateLayouts are tried in order against launch/end date text.
var missionDateLayouts = []string{
	"2006 Jan 2 1504:05",
	"2006 Jan 2 1504",
	"2006 Jan 2",
	"2006-01-02",
}

// ParseMissionLog reads a tab-separated mission log. The file carries a
// commented preamble; the header is the line starting with "#HSFID"
// (leading '#' stripped), every later non-comment line is a record.
// Missions shorter than opts.MinDuration are culled, a trailing '?' on
// an end date is ignored, and a missing or unparseable end date means
// the mission is ongoing as of opts.Ref.
func ParseMissionLog(r io.Reader, opts MissionLogOptions) ([]model.Interval, error) {
	loc := opts.Loc
	if loc == nil {
		loc = time.UTC
	}

	header, records, err := splitMissionLog(r)
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colProject, colShip, colLaunch, colEnd, colDuration} {
		if _, ok := col[required]; !ok {
			return nil, errors.New("mission log header is missing column " + required)
		}
	}

	field := func(rec []string, name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	intervals := make([]model.Interval, 0, len(records))
	culled := 0
	for _, rec := range records {
		dur := parseMissionDuration(field(rec, colDuration))
		if opts.MinDuration > 0 && dur < opts.MinDuration {
			culled++
			continue
		}

		project := timeline.ApplyRenames(field(rec, colProject), opts.Renames)
		if project == "" {
			project = model.UnassignedGroup
		}
		ship := timeline.ApplyRenames(field(rec, colShip), opts.Renames)

		start, err := parseMissionDate(field(rec, colLaunch), loc)
		if err != nil {
			appLog.Warn("mission log: skipping record with bad launch date",
				"ship", ship, "ldate", field(rec, colLaunch))
			continue
		}

		endText := strings.TrimSpace(strings.TrimSuffix(field(rec, colEnd), "?"))
		end, err := parseMissionDate(endText, loc)
		if err != nil {
			// No usable end date: mission is ongoing.
			end = opts.Ref
		}

		intervals = append(intervals, model.Interval{
			Group: project,
			Label: ship,
			Start: start,
			End:   end,
		})
	}

	appLog.Info("mission log parse completed", "entries", len(intervals), "culled", culled)
	return intervals, nil
}

// splitMissionLog separates the header line from data records. The
// preamble and any other '#' lines are dropped.
func splitMissionLog(r io.Reader) ([]string, [][]string, error) {
	var header []string
	var data strings.Builder

	sc := bufio.NewScanner(decodingReader(r))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "#HSFID"):
			header = strings.Split(strings.TrimSpace(strings.TrimPrefix(line, "#")), "\t")
		case strings.HasPrefix(line, "#"), strings.TrimSpace(line) == "":
			// comment or blank
		default:
			data.WriteString(line)
			data.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if header == nil {
		return nil, nil, errors.New("mission log header line (#HSFID...) not found")
	}

	cr := csv.NewReader(strings.NewReader(data.String()))
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

// parseMissionDate tries the known layouts in order.
func parseMissionDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == OngoingMarker {
		return time.Time{}, errors.New("empty date")
	}
	var lastErr error
	for _, layout := range missionDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseMissionDuration parses "D:HH:MM:SS", "HH:MM:SS" or "MM:SS".
// Anything malformed (including placeholder values like "13?") counts
// as zero duration.
func parseMissionDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || s == "0:00:00:00" {
		return 0
	}

	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 4:
		return time.Duration(nums[0])*24*time.Hour +
			time.Duration(nums[1])*time.Hour +
			time.Duration(nums[2])*time.Minute +
			time.Duration(nums[3])*time.Second
	case 3:
		return time.Duration(nums[0])*time.Hour +
			time.Duration(nums[1])*time.Minute +
			time.Duration(nums[2])*time.Second
	case 2:
		return time.Duration(nums[0])*time.Minute +
			time.Duration(nums[1])*time.Second
	default:
		return 0
	}
}
