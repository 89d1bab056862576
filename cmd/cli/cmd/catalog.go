// Package cmd - catalog commands
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fencecost/api"
	"fencecost/core/bom"
	"fencecost/core/catalog"
	"fencecost/internal/config"
)

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the pricebook",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pricebook items",
	Long: `List pricebook items in load order.

Examples:
  fencecost catalog list
  fencecost catalog list --category post
  fencecost catalog list -f json`,
	Args: cobra.NoArgs,
	RunE: runCatalogList,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the pricebook for bad prices and missing fence categories",
	Args:  cobra.NoArgs,
	RunE:  runCatalogValidate,
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "only list items tagged with category")

	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}

	resp := api.NewCatalogResponse(a.Engine.Catalog())
	if catalogCategory != "" {
		filtered := resp.Items[:0]
		for _, item := range resp.Items {
			if item.Category == catalogCategory {
				filtered = append(filtered, item)
			}
		}
		resp.Items = filtered
		resp.Count = len(filtered)
	}

	if config.Get().Output.DefaultFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	w := newUI(cmd)
	table := w.NewTable("SKU", "DESCRIPTION", "UNIT", "PRICE", "CATEGORY").AlignRight(3)
	for _, item := range resp.Items {
		table.AddRow(item.SKU, item.Description, item.Unit, fmt.Sprintf("%.2f", item.UnitPrice), item.Category)
	}
	table.Render()
	w.Println("")
	w.Info("%d items from %s", resp.Count, a.Source)
	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	c := a.Engine.Catalog()

	problems := make([]string, 0)
	for _, err := range c.Validate(catalog.DefaultValidationRules()) {
		problems = append(problems, err.Error())
	}
	if missing := c.MissingCategories(bom.RequiredCategories); len(missing) > 0 {
		problems = append(problems, "no items for fence categories: "+strings.Join(missing, ", "))
	}

	w := newUI(cmd)
	if len(problems) == 0 {
		w.Success("%d items in %s are valid", c.Len(), a.Source)
		return nil
	}

	w.Error("%s has %d problem(s):", a.Source, len(problems))
	for _, p := range problems {
		w.Println("  - %s", p)
	}
	return fmt.Errorf("pricebook validation failed")
}
