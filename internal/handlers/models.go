package handlers

import "price-lookup/internal/models"

// ErrorResponse represents an error response
// @Description Error response with error message and taxonomy code
type ErrorResponse struct {
	// Always false on errors
	OK bool `json:"ok" example:"false"`

	// Error message describing what went wrong
	Error string `json:"error" example:"missing search parameter: referencia or barcode"`

	// Error taxonomy code
	Code string `json:"code" example:"ValidationError"`
}

// SearchResponse represents the search contract
// @Description Matching inventory rows with tax-inclusive prices
type SearchResponse = models.SearchResult

// SearchRequest documents the accepted body fields of POST /api/buscar.
// Any alias listed in the endpoint description is accepted as well.
type SearchRequest struct {
	// Exact barcode lookup (wins over referencia)
	Barcode string `json:"barcode,omitempty" example:"7501234567890"`

	// Case-insensitive substring lookup on the reference
	Referencia string `json:"referencia,omitempty" example:"SHIRT-RED"`

	// Single-result mode ("1", 1, true or "true")
	One interface{} `json:"one,omitempty" swaggertype:"string" example:"1"`
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`

	// Process uptime in seconds
	Uptime float64 `json:"uptime" example:"1234.5"`
}

// DBHealthResponse represents the database probe response
type DBHealthResponse struct {
	// "up" or "down"
	DB string `json:"db" example:"up"`

	// Probe rows (ok, db, userName) when the database is up
	Result []map[string]interface{} `json:"result,omitempty"`

	// Failure message when the database is down
	Error string `json:"error,omitempty" example:"database unreachable"`
}

// RateResponse represents the retail rate
type RateResponse = models.RateQuote
