package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// TextFormatter renders the plain text quote sheet
type TextFormatter struct{}

// Format returns the format type
func (f *TextFormatter) Format() Format { return FormatText }

// ContentType returns the MIME type
func (f *TextFormatter) ContentType() string { return "text/plain; charset=utf-8" }

// Extension returns the file extension
func (f *TextFormatter) Extension() string { return "txt" }

// Render writes the quote as fixed-width text
func (f *TextFormatter) Render(w io.Writer, q *Quote) error {
	if err := validate(q); err != nil {
		return err
	}
	b := q.Breakdown
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("-", 40)

	fmt.Fprintln(bw, q.Kind.Title())
	fmt.Fprintln(bw, strings.Repeat("=", 40))
	fmt.Fprintf(bw, "Generated: %s\n", q.GeneratedAt.Format("2006-01-02T15:04:05"))
	if q.Customer != "" {
		fmt.Fprintf(bw, "Customer: %s\n", q.Customer)
	}
	if q.Project != "" {
		fmt.Fprintf(bw, "Project: %s\n", q.Project)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "LINE ITEMS")
	fmt.Fprintln(bw, rule)
	for _, line := range b.LineItems {
		fmt.Fprintf(bw, "%-12s %7s %-6s @ %8s = %9s\n",
			line.SKU, fixed(line.Quantity, 2), line.Unit, fixed(line.UnitPrice, 2), fixed(line.ExtendedPrice, 2))
		if line.Description != "" {
			fmt.Fprintf(bw, "  %s\n", line.Description)
		}
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "TOTALS")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Materials:     %10s\n", fixed(b.MaterialsSubtotal, 2))
	fmt.Fprintf(bw, "Labor:         %5s h x %7s = %10s\n",
		fixed(b.LaborHours, 2), fixed(b.LaborRate, 2), fixed(b.LaborTotal, 2))
	fmt.Fprintf(bw, "Subtotal:      %10s\n", fixed(b.Subtotal, 2))
	fmt.Fprintf(bw, "Margin (%4s%%): %10s\n", fixed(b.MarginPct, 1), fixed(b.MarginAmount, 2))
	fmt.Fprintf(bw, "TOTAL:         %10s\n", fixed(b.Total, 2))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Thank you for your business.")

	return bw.Flush()
}

func fixed(d decimal.Decimal, places int32) string {
	return d.StringFixedBank(places)
}
