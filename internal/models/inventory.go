package models

import "time"

// Search modes reported in SearchResult.By
const (
	ByBarcode   = "barcode"
	ByReference = "reference"
)

// MaxResults bounds every inventory lookup.
const MaxResults = 50

// InventoryItem is the normalized read model of one inventory row.
// Optional fields are nil when the source row does not carry them.
type InventoryItem struct {
	Reference   string   `json:"reference"`
	Barcode     string   `json:"barcode"`
	Name        string   `json:"name"`
	ListPrice   *float64 `json:"listPrice"`
	InitialCost *float64 `json:"initialCost"`
	OnPromotion bool     `json:"onPromotion"`
	// PromotionPrice is omitted from the output unless OnPromotion is set
	PromotionPrice *float64 `json:"promotionPrice,omitempty"`

	WholesalePrice *float64 `json:"wholesalePrice,omitempty"`
	AverageCost    *float64 `json:"averageCost,omitempty"`
	Stock          *float64 `json:"stock,omitempty"`
	Category       string   `json:"category,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	Store          string   `json:"store,omitempty"`
	Region         string   `json:"region,omitempty"`
}

// SearchQuery is a request-scoped lookup: Barcode wins over Reference.
type SearchQuery struct {
	Barcode   string
	Reference string
	One       bool
}

// Mode returns the lookup mode the query resolves to.
func (q SearchQuery) Mode() string {
	if q.Barcode != "" {
		return ByBarcode
	}
	return ByReference
}

// Limit returns the maximum number of rows the store should return.
func (q SearchQuery) Limit() int {
	if q.One {
		return 1
	}
	return MaxResults
}

// SearchResult is the search contract returned by /api/buscar
type SearchResult struct {
	OK    bool            `json:"ok"`
	By    string          `json:"by"`
	One   bool            `json:"one"`
	Count int             `json:"count"`
	Data  []InventoryItem `json:"data"`
}

// RateQuote is a retail currency rate read from the rate bridge
type RateQuote struct {
	Value float64   `json:"valor"`
	AsOf  time.Time `json:"asOf"`
}

// ItemRef identifies the item a detail view re-queries.
// Barcode wins when both are set.
type ItemRef struct {
	Barcode   string
	Reference string
}

// Empty reports whether the reference carries no identifier.
func (r ItemRef) Empty() bool {
	return r.Barcode == "" && r.Reference == ""
}

// Query returns the single-result search resolving r.
func (r ItemRef) Query() SearchQuery {
	if r.Barcode != "" {
		return SearchQuery{Barcode: r.Barcode, One: true}
	}
	return SearchQuery{Reference: r.Reference, One: true}
}
