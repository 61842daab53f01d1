package model

import "fmt"

// Mode selects how the records are presented.
type Mode string

const (
	// ModeFaceted draws one bar facet per field over daily means.
	ModeFaceted Mode = "faceted"
	// ModePerField draws one line chart per field over raw timestamps.
	ModePerField Mode = "per-field"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFaceted, "":
		return ModeFaceted, nil
	case ModePerField, "perfield", "per_field":
		return ModePerField, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want faceted or per-field)", s)
	}
}

// Chart is the dataset handed to a renderer. Rows is populated in faceted
// mode, Series in per-field mode. Fields lists the facets in display order.
type Chart struct {
	Mode   Mode     `json:"mode"`
	Source string   `json:"source"`
	Fields []string `json:"fields"`
	Rows   []Row    `json:"rows,omitempty"`
	Series []Series `json:"series,omitempty"`
}

// RowsFor returns the rows of a single facet, preserving order.
func (c Chart) RowsFor(field string) []Row {
	var out []Row
	for _, r := range c.Rows {
		if r.Field == field {
			out = append(out, r)
		}
	}
	return out
}
