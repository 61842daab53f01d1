package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/jisaac01/health-stats/internal/model"
)

func TestJSONParser(t *testing.T) {
	p := NewJSONParser()

	rec, err := p.Parse(model.RawLine{
		Text:   `{"Depression":"4","Headache":"6","Timestamp":"2022-05-28 16201858818510"}`,
		Source: "health_stats.json",
		Line:   3,
	})
	if err != nil {
		t.Fatal(err)
	}

	if rec.Line != 3 {
		t.Errorf("expected line 3, got %d", rec.Line)
	}
	if rec.Values["Depression"] != "4" {
		t.Errorf("expected Depression '4', got %q", rec.Values["Depression"])
	}
	if rec.Values["Timestamp"] != "2022-05-28 16201858818510" {
		t.Errorf("unexpected Timestamp %q", rec.Values["Timestamp"])
	}
	if len(rec.Values) != 3 {
		t.Errorf("expected 3 keys, got %d", len(rec.Values))
	}
}

func TestJSONParserNonStringValues(t *testing.T) {
	p := NewJSONParser()

	rec, err := p.Parse(model.RawLine{Text: `{"Pain":7,"Fatigue":null,"Note":{"a":1},"Flag":true}`, Line: 1})
	if err != nil {
		t.Fatal(err)
	}

	if rec.Values["Pain"] != "7" {
		t.Errorf("expected number kept as text '7', got %q", rec.Values["Pain"])
	}
	if _, ok := rec.Values["Fatigue"]; ok {
		t.Error("expected null value to be treated as absent")
	}
	if rec.Values["Note"] != `{"a":1}` {
		t.Errorf("expected nested object as JSON text, got %q", rec.Values["Note"])
	}
	if rec.Values["Flag"] != "true" {
		t.Errorf("expected 'true', got %q", rec.Values["Flag"])
	}
}

func TestJSONParserEscapes(t *testing.T) {
	p := NewJSONParser()

	rec, err := p.Parse(model.RawLine{Text: `{"Anger \"Irritation\"":"3"}`, Line: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Values[`Anger "Irritation"`] != "3" {
		t.Errorf("expected unescaped key, got %v", rec.Values)
	}
}

func TestJSONParserInvalidJSON(t *testing.T) {
	p := NewJSONParser()

	_, err := p.Parse(model.RawLine{Text: `{"Pain":"3"`, Source: "log.json", Line: 12})

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 12 {
		t.Errorf("expected line 12, got %d", pe.Line)
	}
	if pe.Source != "log.json" {
		t.Errorf("expected source log.json, got %q", pe.Source)
	}
}

func TestJSONParserNotObject(t *testing.T) {
	p := NewJSONParser()

	_, err := p.Parse(model.RawLine{Text: `["Pain","3"]`, Line: 2})
	if !errors.Is(err, ErrNotObject) {
		t.Errorf("expected ErrNotObject, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantSeq string
		wantErr bool
	}{
		{"2022-05-28 160000111111", time.Date(2022, 5, 28, 16, 0, 0, 0, time.UTC), "111111", false},
		{"2022-05-28 16201858818510", time.Date(2022, 5, 28, 16, 20, 18, 0, time.UTC), "58818510", false},
		{"2022-05-28 235959", time.Date(2022, 5, 28, 23, 59, 59, 0, time.UTC), "", false},
		{"2022-13-45 999999", time.Time{}, "", true},
		{"2022-05-28 250000", time.Time{}, "", true},
		{"2022-05-28 1600001x", time.Time{}, "", true},
		{"2022-05-28", time.Time{}, "", true},
		{"", time.Time{}, "", true},
	}

	for _, tt := range tests {
		got, seq, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if seq != tt.wantSeq {
			t.Errorf("ParseTimestamp(%q) seq = %q, want %q", tt.in, seq, tt.wantSeq)
		}
	}
}

func TestTimestampErrors(t *testing.T) {
	_, err := Timestamp(model.Record{Line: 4, Values: map[string]string{"Pain": "1"}}, "a.json")
	if !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("expected ErrMissingTimestamp, got %v", err)
	}

	_, err = Timestamp(model.Record{Line: 9, Values: map[string]string{"Timestamp": "2022-13-45 999999"}}, "a.json")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 9 {
		t.Errorf("expected line 9, got %d", pe.Line)
	}
}

func TestDay(t *testing.T) {
	got := Day(time.Date(2022, 5, 28, 23, 59, 59, 0, time.UTC))
	want := time.Date(2022, 5, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
