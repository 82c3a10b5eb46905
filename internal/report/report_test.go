package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttgen/internal/config"
	"ganttgen/internal/model"
)

const stationData = `Skylab
Skylab Workshop, 1973-05-14, 1979-07-11

ISS US
Unity, 1998-12-06, -
Destiny, 2001-02-07, -
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T, sources ...config.SourceConfig) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Title = "Station Modules"
	cfg.ReferenceDate = "2025-07-11"
	cfg.GroupOrder = []string{"Skylab", "ISS US"}
	cfg.GroupColors = map[string]string{"Skylab": "#1155cc"}
	cfg.Sources = sources
	cfg.CacheDir = t.TempDir()
	return cfg
}

func TestGenerate_GroupedSource(t *testing.T) {
	path := writeSource(t, "station_data.txt", stationData)
	cfg := testConfig(t, config.SourceConfig{Name: "stations", Path: path, Format: FormatGrouped})

	rep, err := Generate(context.Background(), cfg, time.Now())
	require.NoError(t, err)

	require.Len(t, rep.Chart.Placements, 3)
	assert.Equal(t, time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC), rep.Reference)

	// Unity and Destiny are both ongoing as of the reference date, so
	// they overlap and stack into two lanes.
	assert.Equal(t, []model.RowKey{
		{Group: "Skylab", Lane: 0},
		{Group: "ISS US", Lane: 0},
		{Group: "ISS US", Lane: 1},
	}, rep.Chart.RowKeys)

	// Ongoing entries resolved against the pinned reference date.
	assert.Equal(t, rep.Reference, rep.Chart.Placements[1].End)
}

func TestGenerate_ClassifierFillsUnassignedGroups(t *testing.T) {
	path := writeSource(t, "data.txt", "Polaris 1, 2000-01-01, 2000-02-01\nHeinlein 2, 2001-01-01, 2001-02-01\n")

	cfg := testConfig(t, config.SourceConfig{Name: "missions", Path: path, Format: FormatGrouped})
	cfg.ClassifyRules = []config.RuleConfig{
		{Prefix: "Polaris", Category: "Polaris"},
		{Prefix: "Heinlein", Category: "Heinlein"},
	}
	cfg.GroupOrder = []string{"Heinlein", "Polaris"}

	rep, err := Generate(context.Background(), cfg, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []model.RowKey{
		{Group: "Heinlein", Lane: 0},
		{Group: "Polaris", Lane: 0},
	}, rep.Chart.RowKeys)
}

func TestGenerate_InvalidIntervalAborts(t *testing.T) {
	path := writeSource(t, "data.txt", "X\nBackwards, 2020-01-01, 2019-01-01\n")
	cfg := testConfig(t, config.SourceConfig{Name: "bad", Path: path, Format: FormatGrouped})

	_, err := Generate(context.Background(), cfg, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backwards", "offending record is identified")
}

func TestGenerate_UnknownFormat(t *testing.T) {
	path := writeSource(t, "data.txt", "X\n")
	cfg := testConfig(t, config.SourceConfig{Name: "x", Path: path, Format: "csv"})

	_, err := Generate(context.Background(), cfg, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source format")
}

func TestGenerate_SourceWithoutPathOrURL(t *testing.T) {
	cfg := testConfig(t, config.SourceConfig{Name: "x", Format: FormatGrouped})

	_, err := Generate(context.Background(), cfg, time.Now())
	require.Error(t, err)
}

func TestWriteArtifacts(t *testing.T) {
	path := writeSource(t, "station_data.txt", stationData)
	cfg := testConfig(t, config.SourceConfig{Name: "stations", Path: path, Format: FormatGrouped})

	rep, err := Generate(context.Background(), cfg, time.Now())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteArtifacts(dir, rep))

	html, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), `data-ready="true"`)

	svg, err := os.ReadFile(filepath.Join(dir, SVGFile))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	text, err := os.ReadFile(filepath.Join(dir, TextFile))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Skylab Workshop, 1973-05-14, 1979-07-11")
}
