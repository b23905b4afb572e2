// Package inventory lists invoice files in a directory tree.
package inventory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/audytor/internal/core/domain"
	"github.com/custodia-labs/audytor/internal/core/ports/driven"
)

// Ensure Scanner implements the interface.
var _ driven.InvoiceInventory = (*Scanner)(nil)

// DefaultExtensions are the invoice file extensions scanned by default.
var DefaultExtensions = []string{".pdf"}

// Scanner walks a directory for invoice files.
type Scanner struct {
	extensions map[string]bool
}

// NewScanner creates a scanner for the given extensions, matched
// case-insensitively. No extensions means DefaultExtensions.
func NewScanner(extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		ext[e] = true
	}
	return &Scanner{extensions: ext}
}

// Scan returns slash-separated paths relative to root, sorted.
// Hidden directories are skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: invoice directory %s: %v", domain.ErrInvalidInput, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	files := []string{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
