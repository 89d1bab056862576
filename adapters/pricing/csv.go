package pricing

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"fencecost/core/catalog"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// CSVSource reads a pricebook CSV file
type CSVSource struct {
	Path string
}

// Name returns the source name
func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

// Load opens and parses the file
func (s *CSVSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.TypeConfig, "pricebook CSV not found: %s", s.Path)
		}
		return nil, errors.Wrapf(errors.TypeParsing, err, "open pricebook %s", s.Path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses pricebook CSV from r
func ReadCSV(r io.Reader) (*catalog.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Parsing("failed to parse pricebook CSV", err)
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.TypeParsing, "pricebook CSV has no header row")
	}

	items, err := parseRows(rows[0], rows[1:], 2)
	if err != nil {
		return nil, err
	}
	return catalog.New(items...), nil
}

// WriteCSV writes items as a canonical pricebook CSV
func WriteCSV(w io.Writer, items []types.CatalogItem) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(fieldOrder); err != nil {
		return err
	}
	for _, item := range items {
		cost := ""
		if item.UnitCost != nil {
			cost = item.UnitCost.String()
		}
		record := []string{item.SKU, item.Description, item.Unit, item.UnitPrice.String(), cost, item.Category}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
