package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MarkdownFormatter renders a markdown quote with grouped amounts
type MarkdownFormatter struct {
	// Language selects digit grouping; defaults to English
	Language language.Tag
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// ContentType returns the MIME type
func (f *MarkdownFormatter) ContentType() string { return "text/markdown; charset=utf-8" }

// Extension returns the file extension
func (f *MarkdownFormatter) Extension() string { return "md" }

// Render writes the quote as markdown tables
func (f *MarkdownFormatter) Render(w io.Writer, q *Quote) error {
	if err := validate(q); err != nil {
		return err
	}
	tag := f.Language
	if tag == language.Und {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	money := func(d decimal.Decimal) string {
		return p.Sprintf("%.2f", d.RoundBank(2).InexactFloat64())
	}

	b := q.Breakdown
	bw := bufio.NewWriter(w)

	p.Fprintf(bw, "# %s\n\n", titleCase(q.Kind.Title()))
	p.Fprintf(bw, "- **Generated:** %s\n", q.GeneratedAt.Format("2006-01-02 15:04"))
	if q.ID != "" {
		p.Fprintf(bw, "- **Reference:** `%s`\n", q.ID)
	}
	if q.Customer != "" {
		p.Fprintf(bw, "- **Customer:** %s\n", escapeMarkdown(q.Customer))
	}
	if q.Project != "" {
		p.Fprintf(bw, "- **Project:** %s\n", escapeMarkdown(q.Project))
	}
	p.Fprintf(bw, "- **Currency:** %s\n\n", q.Currency)

	bw.WriteString("## Line Items\n\n")
	bw.WriteString("| SKU | Description | Qty | Unit | Unit Price | Extended |\n")
	bw.WriteString("|-----|-------------|----:|------|-----------:|---------:|\n")
	for _, line := range b.LineItems {
		p.Fprintf(bw, "| %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdown(line.SKU), escapeMarkdown(line.Description), line.Quantity.String(),
			escapeMarkdown(line.Unit), money(line.UnitPrice), money(line.ExtendedPrice))
	}

	bw.WriteString("\n## Totals\n\n")
	bw.WriteString("| | Amount |\n|---|---:|\n")
	p.Fprintf(bw, "| Materials | %s |\n", money(b.MaterialsSubtotal))
	if !b.LaborTotal.IsZero() {
		p.Fprintf(bw, "| Labor (%s h @ %s) | %s |\n", b.LaborHours.String(), money(b.LaborRate), money(b.LaborTotal))
	}
	p.Fprintf(bw, "| Subtotal | %s |\n", money(b.Subtotal))
	if !b.MarginAmount.IsZero() {
		p.Fprintf(bw, "| Margin (%s%%) | %s |\n", b.MarginPct.String(), money(b.MarginAmount))
	}
	p.Fprintf(bw, "| **Total** | **%s** |\n", money(b.Total))

	return bw.Flush()
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
