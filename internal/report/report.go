// Package report runs the full generation pipeline: load each
// configured source, derive groups, allocate lanes, and assemble the
// chart handed to the rendering sinks.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ganttgen/internal/config"
	appLog "ganttgen/internal/log"
	"ganttgen/internal/model"
	"ganttgen/internal/render"
	"ganttgen/internal/source"
	"ganttgen/internal/timeline"
)

// Source format names accepted in config.
const (
	FormatGrouped    = "grouped"
	FormatMissionLog = "missionlog"
	FormatICS        = "ics"
)

// expandBackYears bounds recurrence expansion for ICS feeds; the report
// covers history up to the reference instant.
const expandBackYears = 100

// Report is one generated schedule ready for rendering.
type Report struct {
	Chart       render.Chart
	Reference   time.Time
	GeneratedAt time.Time
}

// Generate runs the pipeline once. Open-ended entries resolve to the
// config's reference instant (defaulting to now), so a pinned
// reference date makes the output reproducible. A record with start
// after end aborts generation with the record identified.
func Generate(ctx context.Context, cfg *config.Config, now time.Time) (*Report, error) {
	loc := cfg.Location()
	ref := cfg.Reference(now.In(loc))

	classifyRules := make([]timeline.Rule, 0, len(cfg.ClassifyRules))
	for _, r := range cfg.ClassifyRules {
		classifyRules = append(classifyRules, timeline.Rule{Prefix: r.Prefix, Category: r.Category})
	}
	classifier := timeline.NewClassifier(classifyRules)

	renames := make([]timeline.RenameRule, 0, len(cfg.RenameRules))
	for _, r := range cfg.RenameRules {
		renames = append(renames, timeline.RenameRule{Prefix: r.Prefix, Replacement: r.Replacement})
	}

	fetcher := source.NewFetcher(filepath.Join(cfg.CacheDir, "fetch"))

	intervals := make([]model.Interval, 0)
	for _, src := range cfg.Sources {
		parsed, err := loadSource(ctx, src, fetcher, loadOptions{
			ref:     ref,
			loc:     loc,
			cull:    cfg.CullDuration(),
			renames: renames,
		})
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
		intervals = append(intervals, parsed...)
	}

	// Derive a group for entries whose source provided none.
	if len(classifyRules) > 0 {
		for i := range intervals {
			if intervals[i].Group == model.UnassignedGroup || intervals[i].Group == "" {
				intervals[i].Group = classifier.Classify(intervals[i].Label)
			}
		}
	}
	for i := range intervals {
		if intervals[i].Group == "" {
			intervals[i].Group = model.UnassignedGroup
		}
	}

	placements, rowKeys, err := timeline.AssignLanes(intervals, cfg.GroupOrder)
	if err != nil {
		return nil, err
	}

	appLog.Info("report generated",
		"entries", len(placements),
		"rows", len(rowKeys),
		"reference", ref.Format("2006-01-02"),
	)

	return &Report{
		Chart: render.Chart{
			Title:        cfg.Title,
			Footer:       cfg.Footer,
			Placements:   placements,
			RowKeys:      rowKeys,
			Colors:       cfg.GroupColors,
			DefaultColor: cfg.DefaultColor,
			Width:        cfg.Width,
			Height:       cfg.Height,
			MaxLabelLen:  cfg.MaxLabelLen,
		},
		Reference:   ref,
		GeneratedAt: now,
	}, nil
}

type loadOptions struct {
	ref     time.Time
	loc     *time.Location
	cull    time.Duration
	renames []timeline.RenameRule
}

func loadSource(ctx context.Context, src config.SourceConfig, fetcher *source.Fetcher, opts loadOptions) ([]model.Interval, error) {
	body, err := loadBody(ctx, src, fetcher)
	if err != nil {
		return nil, err
	}

	switch src.Format {
	case FormatGrouped:
		return source.ParseGrouped(bytes.NewReader(body), opts.ref, opts.loc)
	case FormatMissionLog:
		return source.ParseMissionLog(bytes.NewReader(body), source.MissionLogOptions{
			Ref:         opts.ref,
			Loc:         opts.loc,
			MinDuration: opts.cull,
			Renames:     opts.renames,
		})
	case FormatICS:
		return source.ParseICS(body, source.ICSOptions{
			SourceName: src.Name,
			Loc:        opts.loc,
			RangeStart: opts.ref.AddDate(-expandBackYears, 0, 0),
			RangeEnd:   opts.ref,
		})
	default:
		return nil, fmt.Errorf("unknown source format %q", src.Format)
	}
}

func loadBody(ctx context.Context, src config.SourceConfig, fetcher *source.Fetcher) ([]byte, error) {
	switch {
	case src.Path != "":
		return os.ReadFile(src.Path)
	case src.URL != "":
		res, err := fetcher.Fetch(ctx, source.Remote{Name: src.Name, URL: src.URL})
		if err != nil {
			return nil, err
		}
		return res.Body, nil
	default:
		return nil, fmt.Errorf("source has neither path nor url")
	}
}

// Artifact file names under the output directory.
const (
	HTMLFile = "chart.html"
	SVGFile  = "chart.svg"
	TextFile = "data.txt"
	PNGFile  = "chart.png"
)

// WriteArtifacts renders the report's HTML, SVG and normalized text
// artifacts into dir, creating it if needed. The PNG is produced
// separately by the capture step.
func WriteArtifacts(dir string, rep *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, rep.Chart); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, HTMLFile), buf.Bytes(), 0o644); err != nil {
		return err
	}

	buf.Reset()
	if err := render.WriteSVG(&buf, rep.Chart); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SVGFile), buf.Bytes(), 0o644); err != nil {
		return err
	}

	buf.Reset()
	if err := render.WriteGroupedText(&buf, rep.Chart.Placements, rep.Chart.RowKeys); err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, TextFile), buf.Bytes(), 0o644); err != nil {
		return err
	}

	appLog.Info("artifacts written", "dir", dir)
	return nil
}
