// Package pricing loads pricebooks from CSV, XLSX and SQL sources into an
// immutable catalog. Every source shares the same column aliases and row rules.
package pricing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fencecost/core/catalog"
	"fencecost/internal/errors"
)

// SourceKind names a pricebook backend
type SourceKind string

const (
	SourceCSV      SourceKind = "csv"
	SourceXLSX     SourceKind = "xlsx"
	SourcePostgres SourceKind = "postgres"
)

// Source produces a catalog
type Source interface {
	// Name describes the source for logs
	Name() string

	// Load reads the full pricebook
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Options selects and configures a source
type Options struct {
	// Kind selects the backend; empty infers it from Path
	Kind SourceKind

	// Path is the CSV or XLSX file
	Path string

	// Sheet is the XLSX sheet; empty uses the first sheet
	Sheet string

	// DSN is the Postgres connection string
	DSN string

	// Table is the SQL table holding pricebook rows
	Table string
}

var (
	_ Source = (*CSVSource)(nil)
	_ Source = (*XLSXSource)(nil)
	_ Source = (*PostgresSource)(nil)
)

// NewSource returns the source described by opts
func NewSource(opts Options) (Source, error) {
	kind := opts.Kind
	if kind == "" {
		kind = inferKind(opts.Path)
	}

	switch kind {
	case SourceCSV:
		return &CSVSource{Path: opts.Path}, nil
	case SourceXLSX:
		return &XLSXSource{Path: opts.Path, Sheet: opts.Sheet}, nil
	case SourcePostgres:
		if opts.DSN == "" {
			return nil, errors.Config("postgres pricebook requires a dsn", nil)
		}
		return &PostgresSource{DSN: opts.DSN, Table: opts.Table}, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown pricebook source %q", kind)
	}
}

// Open resolves opts and loads the pricebook
func Open(ctx context.Context, opts Options) (*catalog.Catalog, error) {
	src, err := NewSource(opts)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

func inferKind(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return SourceXLSX
	default:
		return SourceCSV
	}
}

// Discover returns the first existing file among candidates, skipping blanks.
func Discover(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Config(fmt.Sprintf("no pricebook found (tried %s); set PRICEBOOK_PATH or add pricebook.csv",
		strings.Join(nonEmpty(candidates), ", ")), nil)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
