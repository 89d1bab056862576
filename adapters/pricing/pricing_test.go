package pricing

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fencecost/internal/errors"
)

const samplePricebook = "\ufeffItem_Code, Name ,UOM,Sell_Price,Cost,Group\n" +
	"POST-4X4,4x4 treated post,ea,18.50,11.20,post\n" +
	"RAIL-2X4,2x4 rail,ea,7.25,not-a-number,rail\n" +
	",,,,,\n" +
	"CONCRETE,Fast-set concrete 50lb,bag,6.10,,concrete\n" +
	"MISC,Misc hardware,ea,1.00\n"

func TestReadCSVAliasesAndRows(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(samplePricebook))
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	post, err := c.Lookup("POST-4X4")
	require.NoError(t, err)
	require.Equal(t, "4x4 treated post", post.Description)
	require.Equal(t, "ea", post.Unit)
	require.Equal(t, "18.5", post.UnitPrice.String())
	require.NotNil(t, post.UnitCost)
	require.Equal(t, "11.2", post.UnitCost.String())
	require.Equal(t, "post", post.Category)

	rail, err := c.Lookup("RAIL-2X4")
	require.NoError(t, err)
	require.Nil(t, rail.UnitCost, "unparseable cost is dropped")

	misc, err := c.Lookup("MISC")
	require.NoError(t, err)
	require.Empty(t, misc.Category)
	require.Nil(t, misc.UnitCost)

	require.Equal(t, []string{"POST-4X4", "RAIL-2X4", "CONCRETE", "MISC"}, skus(c.Items()))
}

func TestReadCSVRepeatedHeaderUsesLastColumn(t *testing.T) {
	c, err := ReadCSV(strings.NewReader("sku,description,unit,unit_price, Unit_Price \nA,Thing,ea,1.00,2.00\n"))
	require.NoError(t, err)

	item, err := c.Lookup("A")
	require.NoError(t, err)
	require.Equal(t, "2", item.UnitPrice.String())
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "empty file",
			input:    "",
			contains: "no header row",
		},
		{
			name:     "missing columns",
			input:    "sku,description\nA,thing\n",
			contains: "missing required columns: unit, unit_price",
		},
		{
			name:     "missing sku",
			input:    "sku,description,unit,price\nA,a,ea,1\n,b,ea,2\n",
			contains: "row 3: missing SKU",
		},
		{
			name:     "missing price",
			input:    "sku,description,unit,price\nA,a,ea,\n",
			contains: "row 2 (SKU A): missing unit_price/price",
		},
		{
			name:     "invalid price",
			input:    "sku,description,unit,price\nA,a,ea,cheap\n",
			contains: "row 2 (SKU A): invalid unit_price 'cheap'",
		},
		{
			name:     "negative price",
			input:    "sku,description,unit,price\nA,a,ea,-3\n",
			contains: "unit_price must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			require.True(t, errors.IsType(err, errors.TypeParsing), "unexpected error: %v", err)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCSVSourceLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricebook.csv")
	require.NoError(t, os.WriteFile(path, []byte(samplePricebook), 0644))

	c, err := Open(context.Background(), Options{Path: path})
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	_, err = Open(context.Background(), Options{Path: filepath.Join(dir, "missing.csv")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "pricebook CSV not found")
}

func TestWriteCSVReadsBack(t *testing.T) {
	c, err := ReadCSV(strings.NewReader(samplePricebook))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, c.Items()))

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, skus(c.Items()), skus(again.Items()))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"SKU", "Description", "Unit", "Price", "Category"},
		{"POST-4X4", "4x4 post", "ea", 18.5, "post"},
		{"GATE-4", "4ft gate", "ea", "149.00", "gate"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	c, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	gate, err := c.FirstByCategory("gate")
	require.NoError(t, err)
	require.Equal(t, "GATE-4", gate.SKU)
	require.Equal(t, "149", gate.UnitPrice.String())

	_, err = ReadXLSX(bytes.NewReader(buf.Bytes()), "Nope")
	require.Error(t, err)
}

func TestLoadSQL(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE pricebook_items (
		position INTEGER, sku TEXT, description TEXT, unit TEXT,
		unit_price TEXT, unit_cost TEXT, category TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO pricebook_items VALUES
		(2, 'POST-B', 'second post', 'ea', '20.00', NULL, 'post'),
		(1, 'POST-A', 'first post', 'ea', '18.50', '10.00', 'post'),
		(3, 'SCREWS', NULL, 'box', '24.00', NULL, NULL)`)
	require.NoError(t, err)

	c, err := LoadSQL(context.Background(), db, DefaultTable)
	require.NoError(t, err)
	require.Equal(t, []string{"POST-A", "POST-B", "SCREWS"}, skus(c.Items()))

	first, err := c.FirstByCategory("post")
	require.NoError(t, err)
	require.Equal(t, "POST-A", first.SKU)

	_, err = LoadSQL(context.Background(), db, "items; DROP TABLE x")
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "csv by default", opts: Options{Path: "pricebook.csv"}, want: "csv:pricebook.csv"},
		{name: "xlsx by extension", opts: Options{Path: "book.XLSX"}, want: "xlsx:book.XLSX"},
		{name: "postgres", opts: Options{Kind: SourcePostgres, DSN: "postgres://localhost/fence"}, want: "postgres:pricebook_items"},
		{name: "postgres without dsn", opts: Options{Kind: SourcePostgres}, wantErr: true},
		{name: "unknown kind", opts: Options{Kind: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, src.Name())
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "pricebook.csv")
	require.NoError(t, os.WriteFile(present, []byte("sku\n"), 0644))

	got, err := Discover("", filepath.Join(dir, "nope.csv"), present)
	require.NoError(t, err)
	require.Equal(t, present, got)

	_, err = Discover(filepath.Join(dir, "nope.csv"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "PRICEBOOK_PATH")
}
