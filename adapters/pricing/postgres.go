package pricing

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"

	"fencecost/core/catalog"
	"fencecost/internal/errors"
)

// DefaultTable is the pricebook table read by SQL sources
const DefaultTable = "pricebook_items"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads the pricebook from a Postgres table with columns
// position, sku, description, unit, unit_price, unit_cost, category.
type PostgresSource struct {
	DSN   string
	Table string
}

// Name returns the source name
func (s *PostgresSource) Name() string {
	return "postgres:" + s.table()
}

func (s *PostgresSource) table() string {
	if s.Table == "" {
		return DefaultTable
	}
	return s.Table
}

// Load connects, reads every row and closes the connection
func (s *PostgresSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	db, err := sql.Open("postgres", s.DSN)
	if err != nil {
		return nil, errors.Config("failed to open postgres pricebook", err)
	}
	defer db.Close()

	return LoadSQL(ctx, db, s.table())
}

// LoadSQL reads a pricebook table through any database/sql driver. Rows are
// loaded in position order so category selection is stable.
func LoadSQL(ctx context.Context, db *sql.DB, table string) (*catalog.Catalog, error) {
	if !identPattern.MatchString(table) {
		return nil, errors.Newf(errors.TypeConfig, "invalid pricebook table name %q", table)
	}

	query := fmt.Sprintf(
		"SELECT sku, description, unit, unit_price, unit_cost, category FROM %s ORDER BY position, sku", table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Parsing("failed to query pricebook", err)
	}
	defer rows.Close()

	headers := []string{fieldSKU, fieldDescription, fieldUnit, fieldUnitPrice, fieldUnitCost, fieldCategory}
	var records [][]string
	for rows.Next() {
		var (
			sku, price                     string
			desc, unit, unitCost, category sql.NullString
		)
		if err := rows.Scan(&sku, &desc, &unit, &price, &unitCost, &category); err != nil {
			return nil, errors.Parsing("failed to scan pricebook row", err)
		}
		records = append(records, []string{sku, desc.String, unit.String, price, unitCost.String, category.String})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Parsing("failed to read pricebook rows", err)
	}

	items, err := parseRows(headers, records, 1)
	if err != nil {
		return nil, err
	}
	return catalog.New(items...), nil
}
