package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jisaac01/health-stats/internal/model"
)

// CanonicalOrder is the display order of the known symptom fields.
var CanonicalOrder = []string{
	"Mental Focus",
	"Depression",
	"Anger Irritation",
	"Dwelling",
	"Happiness",
	"Motivation",
	"Overall Mental",
	"Fatigue",
	"Pain",
	"Stomach Pain",
	"Headache",
	"Overall Body",
}

// ErrNoRecords is returned when there is nothing to derive fields from.
var ErrNoRecords = errors.New("no records to chart")

// Strategy selects how the field set is discovered.
type Strategy string

const (
	// StrategyUnion scans every record and unions the keys.
	StrategyUnion Strategy = "union"
	// StrategyLast takes the keys of the last record only.
	StrategyLast Strategy = "last"
	// StrategyCanonical keeps the canonical fields that occur in the data.
	StrategyCanonical Strategy = "canonical"
)

// ParseStrategy converts a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyUnion, "":
		return StrategyUnion, nil
	case StrategyLast:
		return StrategyLast, nil
	case StrategyCanonical:
		return StrategyCanonical, nil
	default:
		return "", fmt.Errorf("unknown discovery strategy %q (want union, last or canonical)", s)
	}
}

// Schema is the ordered set of fields to chart.
type Schema struct {
	fields []string
	index  map[string]int
}

// New builds a Schema over names, ordered with Order. Timestamp and
// duplicate names are ignored.
func New(names []string) *Schema {
	seen := make(map[string]bool, len(names))
	var uniq []string
	for _, n := range names {
		if n == model.TimestampKey || seen[n] {
			continue
		}
		seen[n] = true
		uniq = append(uniq, n)
	}

	s := &Schema{fields: Order(uniq), index: make(map[string]int, len(uniq))}
	for i, f := range s.fields {
		s.index[f] = i
	}
	return s
}

// Discover derives the Schema from records using strategy.
func Discover(records []model.Record, strategy Strategy) (*Schema, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	switch strategy {
	case StrategyLast:
		return New(keys(records[len(records)-1])), nil

	case StrategyUnion, "":
		var names []string
		for _, r := range records {
			names = append(names, keys(r)...)
		}
		return New(names), nil

	case StrategyCanonical:
		present := make(map[string]bool)
		for _, r := range records {
			for k := range r.Values {
				present[k] = true
			}
		}
		var names []string
		for _, f := range CanonicalOrder {
			if present[f] {
				names = append(names, f)
			}
		}
		return New(names), nil

	default:
		return nil, fmt.Errorf("unknown discovery strategy %q", strategy)
	}
}

// Fields returns the fields in display order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Rank returns the display position of name, or -1.
func (s *Schema) Rank(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Order sorts names into display order: canonical fields first in canonical
// order, then everything else lexically.
func Order(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := canonicalRank(out[i]), canonicalRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// canonicalRank places unknown fields after every canonical one.
func canonicalRank(name string) int {
	for i, f := range CanonicalOrder {
		if f == name {
			return i
		}
	}
	return len(CanonicalOrder)
}

func keys(r model.Record) []string {
	out := make([]string, 0, len(r.Values))
	for k := range r.Values {
		out = append(out, k)
	}
	return out
}
