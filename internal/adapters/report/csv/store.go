// Package csv writes and reads contest report artifacts.
//
// A report is a headerless CSV file. The first row holds a single field, the
// elapsed worker time in milliseconds. Every following row is a
// "source,target" relation pair.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/labrecruits-gym/internal/adapters/atomicfile"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/mitchellh/go-homedir"
)

const (
	reportPrefix = "report_"
	reportExt    = ".csv"
	reportMode   = 0o644
)

type Store struct {
	dir string
}

var _ ports.ReportStore = (*Store)(nil)

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("report directory is required")
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand report directory: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolve report directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// PathFor is where the report for level is written.
func (s *Store) PathFor(level string) string {
	return filepath.Join(s.dir, reportPrefix+level+reportExt)
}

// Write replaces the level's report. Readers see either the previous report
// or the complete new one.
func (s *Store) Write(ctx context.Context, level string, elapsed time.Duration, relations domain.RelationSet) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(level) == "" {
		return "", errors.New("level name is required")
	}

	data, err := Encode(elapsed, relations)
	if err != nil {
		return "", err
	}

	path := s.PathFor(level)
	if err := atomicfile.Write(path, data, atomicfile.Options{FileMode: reportMode}); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func Encode(elapsed time.Duration, relations domain.RelationSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{strconv.FormatInt(elapsed.Milliseconds(), 10)}); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	for _, pair := range relations.Pairs() {
		if err := w.Write([]string{pair.Source, pair.Target}); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

type Report struct {
	Elapsed   time.Duration
	Relations domain.RelationSet
}

func Read(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	report, err := Decode(f)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return report, nil
}

func Decode(r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Report{}, errors.New("report is empty")
		}
		return Report{}, fmt.Errorf("read elapsed row: %w", err)
	}
	if len(first) != 1 {
		return Report{}, fmt.Errorf("elapsed row has %d fields, want 1", len(first))
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(first[0]), 10, 64)
	if err != nil || ms < 0 {
		return Report{}, fmt.Errorf("invalid elapsed milliseconds %q", first[0])
	}

	report := Report{Elapsed: time.Duration(ms) * time.Millisecond}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, fmt.Errorf("read relation row %d: %w", line, err)
		}
		if len(record) != 2 {
			return Report{}, fmt.Errorf("relation row %d has %d fields, want 2", line, len(record))
		}
		report.Relations.Add(record[0], record[1])
	}

	return report, nil
}
