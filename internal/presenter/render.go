package presenter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"price-lookup/internal/models"
)

// Render writes the detail card of item. Optional fields are printed only
// when the row carries them.
func Render(w io.Writer, item models.InventoryItem) error {
	name := item.Name
	if name == "" {
		name = "Product"
	}
	barcode := item.Barcode
	if barcode == "" {
		barcode = Placeholder
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", name)
	if item.Reference != "" {
		fmt.Fprintf(tw, "  Ref:\t%s\n", item.Reference)
	}
	fmt.Fprintf(tw, "  Barcode:\t%s\n", barcode)
	fmt.Fprintf(tw, "  Retail price:\t%s\n", FormatCurrency(item.ListPrice, VES))
	fmt.Fprintf(tw, "  Cost USD:\t%s\n", FormatCurrency(item.InitialCost, USD))
	if item.OnPromotion {
		fmt.Fprintf(tw, "  Promotion:\t%s\n", FormatCurrency(item.PromotionPrice, VES))
	}
	if item.WholesalePrice != nil {
		fmt.Fprintf(tw, "  Wholesale price:\t%s\n", FormatCurrency(item.WholesalePrice, VES))
	}
	if item.AverageCost != nil {
		fmt.Fprintf(tw, "  Average cost:\t%s\n", FormatCurrency(item.AverageCost, USD))
	}
	if item.Stock != nil {
		fmt.Fprintf(tw, "  Stock:\t%s\n", FormatQuantity(item.Stock))
	}

	for _, meta := range []struct{ label, value string }{
		{"Category", item.Category},
		{"Brand", item.Brand},
		{"Store", item.Store},
		{"Region", item.Region},
	} {
		if meta.value != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", meta.label, meta.value)
		}
	}
	return tw.Flush()
}
