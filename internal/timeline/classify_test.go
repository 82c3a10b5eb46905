package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier([]Rule{
		{Prefix: "ATP Spaceflight", Category: "ATP Spaceflight"},
		{Prefix: "ATP", Category: "ATP Flight"},
		{Prefix: "Belgica", Category: "Belgica"},
		{Prefix: "CRS", Category: "Belgica"},
	})

	tests := []struct {
		label string
		want  string
	}{
		{"ATP Spaceflight 3", "ATP Spaceflight"},
		{"ATP Flight 12", "ATP Flight"},
		{"Belgica 6", "Belgica"},
		{"CRS-2", "Belgica"},
		{"Polaris 1", "Polaris"}, // no rule: first word
		{"", "Other"},
		{"   ", "Other"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Classify(tc.label), "label %q", tc.label)
	}
}

func TestApplyRenames(t *testing.T) {
	rules := []RenameRule{
		{Prefix: "SZ", Replacement: "Shenzhou"},
		{Prefix: "STS", Replacement: "Space Shuttle"},
	}

	assert.Equal(t, "Shenzhou 12", ApplyRenames("SZ 12", rules))
	assert.Equal(t, "Space Shuttle-51L", ApplyRenames("STS-51L", rules))
	assert.Equal(t, "Soyuz TM-2", ApplyRenames("Soyuz TM-2", rules))
}

func TestApplyRenames_OnlyFirstRuleFires(t *testing.T) {
	rules := []RenameRule{
		{Prefix: "A", Replacement: "B"},
		{Prefix: "B", Replacement: "C"},
	}
	assert.Equal(t, "Bx", ApplyRenames("Ax", rules))
}
