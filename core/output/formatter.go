// Package output renders priced estimates as customer-facing quotes.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fencecost/core/types"
	"fencecost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatText is the plain text quote
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatPDF is a printable PDF quote
	FormatPDF Format = "pdf"

	// FormatXLSX is an Excel workbook
	FormatXLSX Format = "xlsx"
)

// Kind distinguishes customer quotes from supplier purchase orders
type Kind string

const (
	KindEstimate      Kind = "estimate"
	KindPurchaseOrder Kind = "purchase_order"
)

// Title returns the document heading for the kind
func (k Kind) Title() string {
	if k == KindPurchaseOrder {
		return "PURCHASE ORDER"
	}
	return "FENCE QUOTE"
}

// Quote is a priced estimate plus the context needed to present it
type Quote struct {
	// ID identifies a stored quote; empty for ad-hoc renders
	ID string `json:"id,omitempty"`

	Kind     Kind           `json:"kind"`
	Customer string         `json:"customer,omitempty"`
	Project  string         `json:"project,omitempty"`
	Currency types.Currency `json:"currency"`

	// GeneratedAt is when the quote was produced, local wall clock
	GeneratedAt time.Time `json:"generated_at"`

	Breakdown *types.EstimateBreakdown `json:"breakdown"`
}

// NewQuote wraps a breakdown as an estimate quote in USD generated now
func NewQuote(b *types.EstimateBreakdown) *Quote {
	return &Quote{
		Kind:        KindEstimate,
		Currency:    types.CurrencyUSD,
		GeneratedAt: time.Now(),
		Breakdown:   b,
	}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// ContentType is the MIME type of rendered output
	ContentType() string

	// Extension is the file extension, without the dot
	Extension() string

	// Render writes the quote to w
	Render(w io.Writer, q *Quote) error
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry with every built-in formatter
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []Formatter{
		&TextFormatter{},
		&JSONFormatter{Indent: true},
		&MarkdownFormatter{},
		&PDFFormatter{},
		&XLSXFormatter{},
	} {
		// built-ins have distinct formats
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[Format(strings.ToLower(string(format)))]
	if !ok {
		return nil, errors.Validation("format", "unsupported output format %q (supported: %s)",
			format, strings.Join(r.namesLocked(), ", "))
	}
	return f, nil
}

// Formats lists registered formats in name order
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Filename suggests a download name such as "quote-acme-fencing.pdf".
func Filename(q *Quote, f Formatter) string {
	prefix := "quote"
	if q.Kind == KindPurchaseOrder {
		prefix = "po"
	}
	if slug := slugify(q.Customer); slug != "" {
		prefix += "-" + slug
	}
	return fmt.Sprintf("%s.%s", prefix, f.Extension())
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func validate(q *Quote) error {
	if q == nil || q.Breakdown == nil {
		return errors.New(errors.TypeValidation, "quote has no breakdown to render")
	}
	return nil
}
