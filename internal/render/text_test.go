package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"ganttgen/internal/model"
)

func TestWriteGroupedText_Golden(t *testing.T) {
	placements := []model.Placement{
		{Interval: model.Interval{Group: "X", Label: "a", Start: day(2000, 1, 1), End: day(2000, 2, 1)}, Lane: 0},
		{Interval: model.Interval{Group: "Y", Label: "b", Start: day(2001, 1, 1), End: day(2001, 6, 1)}, Lane: 0},
		{Interval: model.Interval{Group: "X", Label: "c", Start: day(2000, 3, 1), End: day(2000, 4, 1)}, Lane: 0},
	}
	rowKeys := []model.RowKey{
		{Group: "Y", Lane: 0},
		{Group: "X", Lane: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGroupedText(&buf, placements, rowKeys))

	g := goldie.New(t)
	g.Assert(t, "grouped_text", buf.Bytes())
}

func TestWriteGroupedText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGroupedText(&buf, nil, nil))
	require.Empty(t, buf.String())
}
