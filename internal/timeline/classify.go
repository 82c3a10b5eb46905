package timeline

import "strings"

// Rule maps a label prefix to a category. Rules are evaluated in order
// and the first match wins, so more specific prefixes should be listed
// before shorter ones (e.g. "ATP Spaceflight" before "ATP").
type Rule struct {
	Prefix   string
	Category string
}

// RenameRule rewrites the leading prefix of a label once, e.g.
// "SZ" -> "Shenzhou" turns "SZ 12" into "Shenzhou 12". Labels not
// starting with Prefix pass through unchanged.
type RenameRule struct {
	Prefix      string
	Replacement string
}

// Classifier derives a category from a free-text label via an ordered
// prefix rule list. It replaces hard-coded prefix matching in report
// scripts with data the config can carry.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a Classifier from rules, preserving their order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify returns the category of label: the first rule whose prefix
// matches, otherwise the label's first word, otherwise "Other" for
// blank input.
func (c *Classifier) Classify(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "Other"
	}
	for _, r := range c.rules {
		if strings.HasPrefix(label, r.Prefix) {
			return r.Category
		}
	}
	if fields := strings.Fields(label); len(fields) > 0 {
		return fields[0]
	}
	return "Other"
}

// ApplyRenames applies the first matching rename rule to label. Only
// the leading occurrence of the prefix is replaced, and at most one
// rule fires.
func ApplyRenames(label string, rules []RenameRule) string {
	for _, r := range rules {
		if strings.HasPrefix(label, r.Prefix) {
			return r.Replacement + label[len(r.Prefix):]
		}
	}
	return label
}
