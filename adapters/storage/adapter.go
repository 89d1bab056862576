// Package storage persists rendered quotes so they can be fetched again by ID.
// Supports multiple backends: memory, file and SQLite.
package storage

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fencecost/core/output"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Store is the storage interface
type Store interface {
	// Save stores a quote, assigning ID and CreatedAt when unset
	Save(ctx context.Context, q *StoredQuote) error

	// Get retrieves a quote by ID
	Get(ctx context.Context, id string) (*StoredQuote, error)

	// List lists quotes newest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error)

	// Delete removes a quote
	Delete(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

// StoredQuote is a saved quote plus the columns it is indexed by
type StoredQuote struct {
	ID        string          `json:"id"`
	Customer  string          `json:"customer,omitempty"`
	Project   string          `json:"project,omitempty"`
	Kind      output.Kind     `json:"kind"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`

	// Quote is the full rendered quote
	Quote *output.Quote `json:"quote"`
}

// NewStoredQuote indexes q for storage
func NewStoredQuote(q *output.Quote) *StoredQuote {
	sq := &StoredQuote{
		ID:       q.ID,
		Customer: q.Customer,
		Project:  q.Project,
		Kind:     q.Kind,
		Quote:    q,
	}
	if q.Breakdown != nil {
		sq.Total = q.Breakdown.Total
	}
	return sq
}

// ListFilter filters quote listing
type ListFilter struct {
	Customer string
	Project  string
	Kind     output.Kind
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// ParseTime reads a since/until bound given as RFC 3339 or a bare
// YYYY-MM-DD date (midnight UTC). An empty value is the zero time.
func ParseTime(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Validation(name, "%s must be an RFC 3339 time or YYYY-MM-DD date, got %q", name, value)
}

func (f *ListFilter) matches(q *StoredQuote) bool {
	if f == nil {
		return true
	}
	if f.Customer != "" && q.Customer != f.Customer {
		return false
	}
	if f.Project != "" && q.Project != f.Project {
		return false
	}
	if f.Kind != "" && q.Kind != f.Kind {
		return false
	}
	if !f.Since.IsZero() && q.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && q.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// apply sorts newest first then applies offset and limit
func (f *ListFilter) apply(results []*StoredQuote) []*StoredQuote {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID < results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if f == nil {
		return results
	}
	if f.Offset > 0 {
		if f.Offset >= len(results) {
			return nil
		}
		results = results[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(results) {
		results = results[:f.Limit]
	}
	return results
}

// prepare assigns identity fields before a save
// canonicalID folds the urn and brace spellings of a UUID onto its plain
// lowercase form. Other ids pass through unchanged.
func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

func prepare(q *StoredQuote) error {
	if q == nil || q.Quote == nil {
		return errors.New(errors.TypeValidation, "cannot store an empty quote")
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	q.ID = canonicalID(q.ID)
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.Quote.ID = q.ID
	return nil
}

// CompareResult is a comparison between two quotes
type CompareResult struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldTotal     decimal.Decimal `json:"old_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent decimal.Decimal `json:"delta_percent"`
}

// Compare reports how the total moved between two stored quotes
func Compare(ctx context.Context, s Store, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}

	delta := newQuote.Total.Sub(oldQuote.Total)
	pct := decimal.Zero
	if oldQuote.Total.IsPositive() {
		pct = types.RoundMoney(delta.Div(oldQuote.Total).Mul(decimal.NewFromInt(100)))
	}

	return &CompareResult{
		OldID:        oldID,
		NewID:        newID,
		OldTotal:     oldQuote.Total,
		NewTotal:     newQuote.Total,
		Delta:        delta,
		DeltaPercent: pct,
	}, nil
}

// Latest returns the newest quote for a project
func Latest(ctx context.Context, s Store, project string) (*StoredQuote, error) {
	results, err := s.List(ctx, &ListFilter{Project: project, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.NotFound("quote for project", project)
	}
	return results[0], nil
}

// Options selects a backend
type Options struct {
	Backend Backend
	Path    string
}

// Open creates a store by backend type
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		path := opts.Path
		if path == "" {
			path = ".fencecost/quotes"
		}
		return NewFileStore(path)
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			path = "fencecost.db"
		}
		return NewSQLiteStore(path)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", opts.Backend)
	}
}

// Ensure interfaces are implemented
var (
	_ Store     = (*MemoryStore)(nil)
	_ Store     = (*FileStore)(nil)
	_ Store     = (*SQLiteStore)(nil)
	_ io.Closer = (*SQLiteStore)(nil)
)
