package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"price-lookup/internal/models"
	"price-lookup/pkg/errors"
)

// Accepted parameter spellings, in priority order.
var (
	BarcodeAliases   = []string{"barcode", "codigo_barra", "codigobarra", "codbarra", "ean", "upc"}
	ReferenceAliases = []string{"referencia", "ref", "q", "termino", "codigo"}
	OneAliases       = []string{"one"}
)

// ErrMissingParameter is returned when neither a barcode nor a reference is given.
var ErrMissingParameter = errors.NewValidationError("missing search parameter: referencia or barcode", "referencia|barcode")

// ParseQuery resolves the alias table against values into a canonical query.
// values holds either a decoded body or the query string.
func ParseQuery(values map[string]interface{}) (models.SearchQuery, error) {
	q := models.SearchQuery{
		Barcode:   firstString(values, BarcodeAliases),
		Reference: firstString(values, ReferenceAliases),
		One:       isOne(firstValue(values, OneAliases)),
	}
	if q.Barcode == "" && q.Reference == "" {
		return q, ErrMissingParameter
	}
	return q, nil
}

// firstString returns the first alias whose value is non-empty after trimming.
func firstString(values map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		if s := strings.TrimSpace(stringify(values[alias])); s != "" {
			return s
		}
	}
	return ""
}

func firstValue(values map[string]interface{}, aliases []string) interface{} {
	for _, alias := range aliases {
		if v, ok := values[alias]; ok {
			return v
		}
	}
	return nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// isOne accepts "1", 1, true and "true" as the single-result flag.
func isOne(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	case float64:
		return t == 1
	case int:
		return t == 1
	default:
		s := strings.TrimSpace(stringify(v))
		return s == "1" || strings.EqualFold(s, "true")
	}
}
