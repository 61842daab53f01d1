package model

import "time"

// TimestampKey is the one mandatory key of every log line.
const TimestampKey = "Timestamp"

// RawLine is a single non-empty line read from the input file.
type RawLine struct {
	Text   string
	Source string // originating file path
	Line   int    // 1-based line number
}

// Record is one parsed log line: every key mapped to its string value,
// including the Timestamp.
type Record struct {
	Line   int               `json:"line"`
	Values map[string]string `json:"values"`
}

// Value returns the raw string for key and whether it was present.
func (r Record) Value(key string) (string, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Cell is one melted (day, field, value) triple before aggregation.
type Cell struct {
	Day   time.Time
	Field string
	Value float64
}

// Row is one aggregated (day, field, mean) row of the long-form table.
type Row struct {
	Day   time.Time `json:"day"`
	Field string    `json:"field"`
	Value float64   `json:"value"`
}

// Point is a single raw sample of one field.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series holds every sample of one field in input order.
type Series struct {
	Field  string  `json:"field"`
	Points []Point `json:"points"`
}
