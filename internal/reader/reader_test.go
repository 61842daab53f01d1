package reader

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jisaac01/health-stats/internal/parser"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const sample = `{"Depression":"4","Headache":"6","Timestamp":"2022-05-28 160000111111"}

{"Depression":"9","Headache":"2","Timestamp":"2022-05-28 170000222222"}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPreservesOrder(t *testing.T) {
	path := writeFile(t, "health_stats.json", sample)

	records, stats, err := Read(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Values["Depression"] != "4" || records[1].Values["Depression"] != "9" {
		t.Errorf("records out of order: %v", records)
	}
	// The blank line still counts toward line numbers.
	if records[1].Line != 3 {
		t.Errorf("expected second record on line 3, got %d", records[1].Line)
	}
	if stats.Lines != 2 || stats.Records != 2 || stats.Skipped != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestReadNotFound(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing.json"), Options{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadDirectoryIsIOError(t *testing.T) {
	_, _, err := Read(t.TempDir(), Options{})
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("expected *IOError, got %v", err)
	}
}

func TestReadAbortsOnBadLine(t *testing.T) {
	path := writeFile(t, "bad.json", `{"Pain":"1","Timestamp":"2022-05-28 160000"}
not json
{"Pain":"2","Timestamp":"2022-05-29 160000"}
`)

	records, _, err := Read(path, Options{Policy: PolicyAbort})

	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *parser.ParseError, got %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("expected line 2, got %d", pe.Line)
	}
	if pe.Source != path {
		t.Errorf("expected source %q, got %q", path, pe.Source)
	}
	if records != nil {
		t.Errorf("expected no partial results, got %d records", len(records))
	}
}

func TestReadSkipsBadLine(t *testing.T) {
	path := writeFile(t, "bad.json", `{"Pain":"1","Timestamp":"2022-05-28 160000"}
not json
{"Pain":"2","Timestamp":"2022-05-29 160000"}
`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	records, stats, err := Read(path, Options{Policy: PolicySkip, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if stats.Skipped != 1 {
		t.Errorf("expected 1 skipped line, got %d", stats.Skipped)
	}
	if !strings.Contains(logs.String(), "line=2") {
		t.Errorf("expected warning naming line 2, got %q", logs.String())
	}
}

func TestReadZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_stats.json.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(enc, sample); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	records, _, err := Read(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestReadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_stats.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := io.WriteString(gz, sample); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	records, _, err := Read(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestReadCorruptGzip(t *testing.T) {
	path := writeFile(t, "broken.json.gz", "definitely not gzip")

	_, _, err := Read(path, Options{})
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("expected *IOError, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{"SKIP", PolicySkip, false},
		{"retry", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
