package pricing

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	"fencecost/core/catalog"
	"fencecost/internal/errors"
)

// XLSXSource reads a pricebook from an Excel workbook
type XLSXSource struct {
	Path  string
	Sheet string
}

// Name returns the source name
func (s *XLSXSource) Name() string {
	return "xlsx:" + s.Path
}

// Load opens the workbook and parses the configured sheet
func (s *XLSXSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "open pricebook workbook %s", s.Path)
	}
	defer f.Close()

	return readWorkbook(f, s.Sheet)
}

// ReadXLSX parses a pricebook workbook from r
func ReadXLSX(r io.Reader, sheet string) (*catalog.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Parsing("failed to open pricebook workbook", err)
	}
	defer f.Close()

	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) (*catalog.Catalog, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "read sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, errors.Newf(errors.TypeParsing, "sheet %q has no header row", sheet)
	}

	items, err := parseRows(rows[0], rows[1:], 2)
	if err != nil {
		return nil, err
	}
	return catalog.New(items...), nil
}
