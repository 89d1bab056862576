// Package jobfile reads fence job descriptions written in HCL.
//
// A job file names the customer, the labor and margin terms, an optional
// fence to size and any number of extra pricebook items:
//
//	customer   = "Jane Homeowner"
//	margin_pct = 20
//
//	labor {
//	  hours = 16
//	  rate  = 55
//	}
//
//	fence {
//	  length_ft = var.length
//	  gates     = 1
//	}
//
//	item "HINGE-HD" {
//	  quantity = 2
//	}
//
// Expressions may reference caller supplied variables as var.<name> and use
// the min, max, ceil, floor, upper and lower functions.
package jobfile

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"fencecost/core/bom"
	"fencecost/core/catalog"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// Job is a decoded job file
type Job struct {
	Customer  string
	Project   string
	Currency  types.Currency
	MarginPct decimal.Decimal
	Labor     types.Labor

	// Fence is nil when the job only lists explicit items
	Fence *types.FenceParams

	// Items are explicit pricebook lines, in file order
	Items []types.LineItem
}

// file mirrors the HCL layout
type file struct {
	Customer  string      `hcl:"customer,optional"`
	Project   string      `hcl:"project,optional"`
	Currency  string      `hcl:"currency,optional"`
	MarginPct cty.Value   `hcl:"margin_pct,optional"`
	Labor     *laborBlock `hcl:"labor,block"`
	Fence     *fenceBlock `hcl:"fence,block"`
	Items     []itemBlock `hcl:"item,block"`
}

type laborBlock struct {
	Hours cty.Value `hcl:"hours,optional"`
	Rate  cty.Value `hcl:"rate,optional"`
}

type fenceBlock struct {
	LengthFt   cty.Value `hcl:"length_ft"`
	Style      string    `hcl:"style,optional"`
	PostsPerFt cty.Value `hcl:"posts_per_ft,optional"`
	Gates      cty.Value `hcl:"gates,optional"`
}

type itemBlock struct {
	SKU      string    `hcl:"sku,label"`
	Quantity cty.Value `hcl:"quantity"`
}

// Load reads and decodes the job file at path
func Load(path string, vars map[string]cty.Value) (*Job, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("job file", path)
		}
		return nil, errors.Wrapf(errors.TypeParsing, err, "read job file %s", path)
	}
	return Parse(src, path, vars)
}

// Parse decodes HCL job source. filename is used in diagnostics only.
func Parse(src []byte, filename string, vars map[string]cty.Value) (*Job, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid job file", diags)
	}

	var raw file
	if diags := gohcl.DecodeBody(hclFile.Body, evalContext(vars), &raw); diags.HasErrors() {
		return nil, errors.Parsing("invalid job file", diags)
	}
	return raw.job()
}

func evalContext(vars map[string]cty.Value) *hcl.EvalContext {
	varObj := cty.EmptyObjectVal
	if len(vars) > 0 {
		varObj = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": varObj},
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
		},
	}
}

func (f *file) job() (*Job, error) {
	j := &Job{
		Customer: f.Customer,
		Project:  f.Project,
		Currency: types.CurrencyUSD,
	}
	if f.Currency != "" {
		j.Currency = types.Currency(f.Currency)
	}

	var err error
	if j.MarginPct, err = number("margin_pct", f.MarginPct, decimal.Zero); err != nil {
		return nil, err
	}
	if f.Labor != nil {
		if j.Labor.Hours, err = number("labor.hours", f.Labor.Hours, decimal.Zero); err != nil {
			return nil, err
		}
		if j.Labor.Rate, err = number("labor.rate", f.Labor.Rate, decimal.Zero); err != nil {
			return nil, err
		}
	} else {
		j.Labor = types.Labor{Hours: decimal.Zero, Rate: decimal.Zero}
	}

	if f.Fence != nil {
		length, err := number("fence.length_ft", f.Fence.LengthFt, decimal.Zero)
		if err != nil {
			return nil, err
		}
		fence := types.NewFenceParams(length)
		if f.Fence.Style != "" {
			fence.Style = f.Fence.Style
		}
		if fence.PostsPerFt, err = number("fence.posts_per_ft", f.Fence.PostsPerFt, types.DefaultPostsPerFt); err != nil {
			return nil, err
		}
		gates, err := number("fence.gates", f.Fence.Gates, decimal.Zero)
		if err != nil {
			return nil, err
		}
		if !gates.Equal(gates.Truncate(0)) {
			return nil, errors.Validation("fence.gates", "fence.gates must be a whole number, got %s", gates)
		}
		fence.Gates = int(gates.IntPart())
		if err := bom.Validate(fence); err != nil {
			return nil, err
		}
		j.Fence = &fence
	}

	for _, item := range f.Items {
		qty, err := number("item."+item.SKU+".quantity", item.Quantity, decimal.Zero)
		if err != nil {
			return nil, err
		}
		j.Items = append(j.Items, types.LineItem{SKU: item.SKU, Quantity: qty})
	}

	if j.Fence == nil && len(j.Items) == 0 {
		return nil, errors.Validation("item", "job defines neither a fence nor any items")
	}
	return j, nil
}

// LineItems returns the fence bill of materials followed by the explicit items.
func (j *Job) LineItems(c *catalog.Catalog, ratios bom.Ratios) ([]types.LineItem, error) {
	var lines []types.LineItem
	if j.Fence != nil {
		fenceLines, err := bom.NewBuilder(ratios).Build(c, *j.Fence)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fenceLines...)
	}
	return append(lines, j.Items...), nil
}

// number converts an attribute value to a decimal, using def when unset.
// Strings holding numbers are accepted so var values can come from a CLI.
func number(field string, v cty.Value, def decimal.Decimal) (decimal.Decimal, error) {
	if v.IsNull() {
		return def, nil
	}
	if !v.IsKnown() {
		return decimal.Zero, errors.Validation(field, "%s is not known", field)
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return decimal.Zero, errors.Validation(field, "%s must be a number: %v", field, err)
	}
	d, err := decimal.NewFromString(n.AsBigFloat().Text('f', -1))
	if err != nil {
		return decimal.Zero, errors.Validation(field, "%s must be a number: %v", field, err)
	}
	return d, nil
}

// Vars converts raw name=value strings into HCL variables
func Vars(raw map[string]string) map[string]cty.Value {
	vars := make(map[string]cty.Value, len(raw))
	for k, v := range raw {
		vars[k] = cty.StringVal(v)
	}
	return vars
}
