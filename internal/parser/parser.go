package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jisaac01/health-stats/internal/model"
	"github.com/valyala/fastjson"
)

// ErrNotObject is returned for a line that is valid JSON but not an object.
var ErrNotObject = errors.New("line is not a JSON object")

// ParseError identifies a line that could not be parsed, either because it
// is not a JSON object or because its Timestamp is malformed.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser converts a raw log line into a Record.
type Parser interface {
	Parse(raw model.RawLine) (model.Record, error)
}

// ---------------------------------------------------------------------------
// JSON Parser
// ---------------------------------------------------------------------------

// JSONParser handles one flat JSON object per line.
// String values are kept verbatim; numbers and booleans keep their JSON text;
// null means the key is absent. A JSONParser must not be shared between
// goroutines.
type JSONParser struct {
	p fastjson.Parser
}

func NewJSONParser() *JSONParser { return &JSONParser{} }

func (p *JSONParser) Parse(raw model.RawLine) (model.Record, error) {
	v, err := p.p.Parse(raw.Text)
	if err != nil {
		return model.Record{}, &ParseError{Source: raw.Source, Line: raw.Line, Err: err}
	}
	obj, err := v.Object()
	if err != nil {
		return model.Record{}, &ParseError{Source: raw.Source, Line: raw.Line, Err: ErrNotObject}
	}

	values := make(map[string]string, obj.Len())
	obj.Visit(func(key []byte, val *fastjson.Value) {
		switch val.Type() {
		case fastjson.TypeNull:
			return
		case fastjson.TypeString:
			b, _ := val.StringBytes()
			values[string(key)] = string(b)
		default:
			values[string(key)] = string(val.MarshalTo(nil))
		}
	})

	return model.Record{Line: raw.Line, Values: values}, nil
}

// ---------------------------------------------------------------------------
// Timestamps
// ---------------------------------------------------------------------------

// timestampLayout covers the date and the concatenated HHMMSS. Whatever
// follows is a digit-only sequence suffix used only to keep entries unique.
const timestampLayout = "2006-01-02 150405"

// ErrMissingTimestamp is returned for a record without a Timestamp key.
var ErrMissingTimestamp = errors.New("missing " + model.TimestampKey)

// ParseTimestamp parses "YYYY-MM-DD HHMMSS<digits>" as UTC and returns the
// time together with the opaque suffix.
func ParseTimestamp(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(timestampLayout) {
		return time.Time{}, "", fmt.Errorf("timestamp %q: too short for %q", s, timestampLayout)
	}
	t, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("timestamp %q: %w", s, err)
	}
	seq := s[len(timestampLayout):]
	for _, c := range seq {
		if c < '0' || c > '9' {
			return time.Time{}, "", fmt.Errorf("timestamp %q: non-digit suffix %q", s, seq)
		}
	}
	return t, seq, nil
}

// Timestamp returns the parsed Timestamp of rec. Failures are reported as a
// *ParseError naming the record's line.
func Timestamp(rec model.Record, source string) (time.Time, error) {
	raw, ok := rec.Value(model.TimestampKey)
	if !ok {
		return time.Time{}, &ParseError{Source: source, Line: rec.Line, Err: ErrMissingTimestamp}
	}
	t, _, err := ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, &ParseError{Source: source, Line: rec.Line, Err: err}
	}
	return t, nil
}

// Day truncates t to its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
