package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jisaac01/health-stats/internal/model"
	"github.com/jisaac01/health-stats/internal/parser"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// ErrNotFound is returned when the input path does not exist.
var ErrNotFound = errors.New("input file not found")

// IOError wraps a failure to open, decompress or read the input.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// Policy decides what happens to a line that is not a JSON object.
type Policy string

const (
	// PolicyAbort fails the whole read on the first bad line.
	PolicyAbort Policy = "abort"
	// PolicySkip logs the bad line and moves on.
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyAbort, "":
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown bad-line policy %q (want abort or skip)", s)
	}
}

// Options controls a Read.
type Options struct {
	Policy Policy
	Parser parser.Parser // defaults to a JSONParser
	Logger *slog.Logger  // defaults to slog.Default()
}

// Stats describes what a Read consumed.
type Stats struct {
	Lines   int `json:"lines"`   // non-empty lines seen
	Records int `json:"records"` // lines parsed into records
	Skipped int `json:"skipped"` // lines dropped under PolicySkip
}

// Read loads every non-empty line of path as a Record, preserving input
// order. Files ending in .zst or .gz are decompressed on the fly.
func Read(path string, opts Options) ([]model.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Stats{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, Stats{}, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	r, closeFn, err := decompress(path, f)
	if err != nil {
		return nil, Stats{}, &IOError{Path: path, Err: err}
	}
	defer closeFn()

	return Scan(r, path, opts)
}

// Scan parses line-delimited JSON from r. source is used in diagnostics.
func Scan(r io.Reader, source string, opts Options) ([]model.Record, Stats, error) {
	p := opts.Parser
	if p == nil {
		p = parser.NewJSONParser()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		records []model.Record
		stats   Stats
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		stats.Lines++

		rec, err := p.Parse(model.RawLine{Text: text, Source: source, Line: lineNo})
		if err != nil {
			if opts.Policy == PolicySkip {
				stats.Skipped++
				logger.Warn("skipping unparseable line", "source", source, "line", lineNo, "error", err)
				continue
			}
			return nil, stats, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, &IOError{Path: source, Err: fmt.Errorf("after line %d: %w", lineNo, err)}
	}

	stats.Records = len(records)
	return records, stats, nil
}

// decompress wraps f according to the file extension.
func decompress(path string, f *os.File) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	default:
		return f, func() {}, nil
	}
}
