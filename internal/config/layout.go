package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxWidgetWeight caps the width weight of a single widget.
const MaxWidgetWeight = 12

// WidgetSpec is one parsed layout entry.
type WidgetSpec struct {
	Kind   string
	Weight int
}

// ParseWidget parses a layout entry like "proc:2". The weight defaults to 1.
func ParseWidget(s string) (WidgetSpec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	kind, weightText, hasWeight := strings.Cut(s, ":")
	spec := WidgetSpec{Kind: kind, Weight: 1}

	if !slices.Contains(WidgetKinds, kind) {
		return spec, fmt.Errorf("unknown widget '%s' - pick one of %s", kind, strings.Join(WidgetKinds, ", "))
	}
	if hasWeight {
		w, err := strconv.Atoi(weightText)
		if err != nil || w < 1 || w > MaxWidgetWeight {
			return spec, fmt.Errorf("widget '%s' has weight '%s' - use a whole number from 1 to %d", kind, weightText, MaxWidgetWeight)
		}
		spec.Weight = w
	}
	return spec, nil
}

// Rows parses the layout and drops disabled widgets. Rows left empty are
// removed.
func (c *Config) Rows() ([][]WidgetSpec, error) {
	var rows [][]WidgetSpec
	for _, entries := range c.Layout {
		var row []WidgetSpec
		for _, entry := range entries {
			spec, err := ParseWidget(entry)
			if err != nil {
				return nil, err
			}
			if c.WidgetEnabled(spec.Kind) {
				row = append(row, spec)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
