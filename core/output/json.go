package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders the quote as JSON. Money fields are decimal strings.
type JSONFormatter struct {
	Indent bool
}

// Format returns the format type
func (f *JSONFormatter) Format() Format { return FormatJSON }

// ContentType returns the MIME type
func (f *JSONFormatter) ContentType() string { return "application/json" }

// Extension returns the file extension
func (f *JSONFormatter) Extension() string { return "json" }

// Render writes q as a JSON document
func (f *JSONFormatter) Render(w io.Writer, q *Quote) error {
	if err := validate(q); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(q)
}
