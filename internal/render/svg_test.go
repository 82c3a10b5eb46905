package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sampleChart()))
	out := buf.String()

	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "fill:#970c10")
	assert.Contains(t, out, "fill:#1155cc")
	assert.Contains(t, out, "Space Station Modules Timeline")

	// One rect per bar plus the background.
	assert.Equal(t, 4, strings.Count(out, "<rect"))
}

func TestWriteSVG_EmptyChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, Chart{Title: "Empty"}))
	assert.Contains(t, buf.String(), "<svg")
}
