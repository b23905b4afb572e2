// Package report writes and reads the verdict log and run summary files.
package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
	"github.com/custodia-labs/audytor/internal/logger"
)

// Output file names.
const (
	VerdictsFile = "verdicts.jsonl"
	SummaryFile  = "verdicts_summary.json"
)

// Verify interface compliance.
var (
	_ driven.ReportWriter     = (*Writer)(nil)
	_ driven.VerdictLogReader = (*Reader)(nil)
)

// maxLine bounds a single verdict log line.
const maxLine = 4 << 20

// Writer writes verdicts as JSON lines and the summary as indented JSON.
// Both files are staged next to their targets and renamed into place only
// after both were written. If either rename fails, files already replaced
// are restored, so a directory never mixes two runs.
type Writer struct{}

// NewWriter creates a report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteReport writes verdicts.jsonl and verdicts_summary.json into dir.
func (w *Writer) WriteReport(ctx context.Context, dir string, result *domain.RunResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil run result", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	verdicts, err := encodeVerdicts(result.Verdicts)
	if err != nil {
		return err
	}
	summary, err := encodeSummary(&result.Summary)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	staged := make([]string, 0, 2)
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}

	files := []struct {
		name string
		data []byte
	}{
		{VerdictsFile, verdicts},
		{SummaryFile, summary},
	}
	for _, f := range files {
		tmp, err := stage(dir, f.name, f.data)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	if err := commit(dir, names, staged); err != nil {
		cleanup()
		return err
	}

	logger.Debug("Wrote %d verdicts to %s", len(result.Verdicts), dir)
	return nil
}

// rename is replaced in tests to simulate a failed move.
var rename = os.Rename

// replaced records a target moved into place and the previous file it
// displaced, if any.
type replaced struct {
	target string
	backup string
}

// commit moves each staged file over its target. Existing targets are
// moved aside first and restored if a later move fails.
func commit(dir string, names, staged []string) error {
	var done []replaced
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			r := done[i]
			if r.backup == "" {
				_ = os.Remove(r.target)
				continue
			}
			if err := rename(r.backup, r.target); err != nil {
				logger.Error("Failed to restore %s: %v", r.target, err)
			}
		}
	}

	for i, name := range names {
		r := replaced{target: filepath.Join(dir, name)}
		if _, err := os.Lstat(r.target); err == nil {
			r.backup = filepath.Join(dir, "."+name+".prev")
			if err := rename(r.target, r.backup); err != nil {
				rollback()
				return fmt.Errorf("move previous %s aside: %w", name, err)
			}
		}
		if err := rename(staged[i], r.target); err != nil {
			if r.backup != "" {
				_ = rename(r.backup, r.target)
			}
			rollback()
			return fmt.Errorf("move %s into place: %w", name, err)
		}
		done = append(done, r)
	}

	for _, r := range done {
		if r.backup != "" {
			_ = os.Remove(r.backup)
		}
	}
	return nil
}

// stage writes data to a temporary file in dir and returns its path.
func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	return tmp, nil
}

func encodeVerdicts(verdicts []domain.Verdict) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range verdicts {
		if err := enc.Encode(&verdicts[i]); err != nil {
			return nil, fmt.Errorf("encode verdict %s: %w", verdicts[i].RowID(), err)
		}
	}
	return buf.Bytes(), nil
}

func encodeSummary(summary *domain.Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return buf.Bytes(), nil
}

// Reader reads verdict logs written by Writer.
type Reader struct{}

// NewReader creates a verdict log reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadVerdicts returns the verdicts at path in file order. path may also be
// a run output directory.
func (r *Reader) ReadVerdicts(ctx context.Context, path string) ([]domain.Verdict, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, VerdictsFile)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: verdict log %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open verdict log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	verdicts := []domain.Verdict{}
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var v domain.Verdict
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", domain.ErrInvalidInput, path, line, err)
		}
		verdicts = append(verdicts, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read verdict log: %w", err)
	}
	return verdicts, nil
}
