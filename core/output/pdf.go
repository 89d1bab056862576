package output

import (
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fencecost/internal/errors"
)

var (
	pdfGrey     = &props.Color{Red: 90, Green: 90, Blue: 90}
	pdfHeaderBg = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfStripeBg = &props.Color{Red: 245, Green: 245, Blue: 245}
	pdfWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// PDFFormatter renders a one-page A4 quote
type PDFFormatter struct{}

// Format returns the format type
func (f *PDFFormatter) Format() Format { return FormatPDF }

// ContentType returns the MIME type
func (f *PDFFormatter) ContentType() string { return "application/pdf" }

// Extension returns the file extension
func (f *PDFFormatter) Extension() string { return "pdf" }

// Render writes the PDF document to w
func (f *PDFFormatter) Render(w io.Writer, q *Quote) error {
	if err := validate(q); err != nil {
		return err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfGrey,
		}).
		Build()

	m := maroto.New(cfg)
	p := message.NewPrinter(language.English)

	addPDFHeader(m, q)
	addPDFLines(m, q, p)
	addPDFTotals(m, q, p)

	m.AddRows(
		row.New(14).Add(
			col.New(12).Add(text.New("Thank you for your business.", props.Text{
				Size:  9,
				Style: fontstyle.Italic,
				Align: align.Center,
				Top:   6,
				Color: pdfGrey,
			})),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return errors.Internal("failed to generate PDF", err)
	}
	_, err = w.Write(doc.GetBytes())
	return err
}

func addPDFHeader(m core.Maroto, q *Quote) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(text.New(q.Kind.Title(), props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Center,
			})),
		),
	)

	info := props.Text{Size: 9, Align: align.Left, Color: pdfGrey}
	right := info
	right.Align = align.Right

	left := fmt.Sprintf("Generated: %s", q.GeneratedAt.Format("2006-01-02 15:04"))
	if q.ID != "" {
		left += fmt.Sprintf("   Ref: %s", q.ID)
	}
	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New(left, info)),
			col.New(4).Add(text.New(q.Currency.String(), right)),
		),
	)
	if q.Customer != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Customer: "+q.Customer, info))))
	}
	if q.Project != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Project: "+q.Project, info))))
	}
	m.AddRows(row.New(4))
}

func addPDFLines(m core.Maroto, q *Quote, p *message.Printer) {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: pdfWhite, Top: 1}
	headLeft := head
	headLeft.Align = align.Left
	cell := &props.Cell{BackgroundColor: pdfHeaderBg}

	m.AddRows(
		row.New(7).Add(
			col.New(2).Add(text.New("SKU", headLeft)).WithStyle(cell),
			col.New(4).Add(text.New("Description", headLeft)).WithStyle(cell),
			col.New(1).Add(text.New("Qty", head)).WithStyle(cell),
			col.New(1).Add(text.New("Unit", head)).WithStyle(cell),
			col.New(2).Add(text.New("Unit Price", head)).WithStyle(cell),
			col.New(2).Add(text.New("Extended", head)).WithStyle(cell),
		),
	)

	body := props.Text{Size: 8, Align: align.Left, Top: 1}
	num := body
	num.Align = align.Right
	center := body
	center.Align = align.Center

	for i, line := range q.Breakdown.LineItems {
		cols := []core.Col{
			col.New(2).Add(text.New(line.SKU, body)),
			col.New(4).Add(text.New(line.Description, body)),
			col.New(1).Add(text.New(line.Quantity.String(), center)),
			col.New(1).Add(text.New(line.Unit, center)),
			col.New(2).Add(text.New(p.Sprintf("%.2f", line.UnitPrice.InexactFloat64()), num)),
			col.New(2).Add(text.New(p.Sprintf("%.2f", line.ExtendedPrice.InexactFloat64()), num)),
		}
		if i%2 == 1 {
			stripe := &props.Cell{BackgroundColor: pdfStripeBg}
			for j := range cols {
				cols[j] = cols[j].WithStyle(stripe)
			}
		}
		m.AddRows(row.New(6).Add(cols...))
	}
	m.AddRows(row.New(4))
}

func addPDFTotals(m core.Maroto, q *Quote, p *message.Printer) {
	b := q.Breakdown
	label := props.Text{Size: 9, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}

	add := func(name string, amount string, bold bool) {
		l, v := label, value
		if bold {
			l.Style = fontstyle.Bold
			v.Style = fontstyle.Bold
		}
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New(name, l)),
				col.New(4).Add(text.New(amount, v)),
			),
		)
	}

	add("Materials", p.Sprintf("%.2f", b.MaterialsSubtotal.InexactFloat64()), false)
	if !b.LaborTotal.IsZero() {
		add(fmt.Sprintf("Labor (%s h x %s)", b.LaborHours.String(), b.LaborRate.StringFixed(2)),
			p.Sprintf("%.2f", b.LaborTotal.InexactFloat64()), false)
	}
	add("Subtotal", p.Sprintf("%.2f", b.Subtotal.InexactFloat64()), false)
	if !b.MarginAmount.IsZero() {
		add(fmt.Sprintf("Margin (%s%%)", b.MarginPct.String()), p.Sprintf("%.2f", b.MarginAmount.InexactFloat64()), false)
	}
	add("TOTAL", p.Sprintf("%s %.2f", q.Currency, b.Total.InexactFloat64()), true)
}
