// Package pricing computes tax-inclusive prices for inventory rows.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTaxFactor is the 16% sales tax applied to base prices.
var DefaultTaxFactor = decimal.RequireFromString("1.16")

// Calculator applies a fixed tax factor and rounds to cents.
type Calculator struct {
	factor decimal.Decimal
}

func NewCalculator(factor string) (*Calculator, error) {
	if factor == "" {
		return &Calculator{factor: DefaultTaxFactor}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(factor))
	if err != nil {
		return nil, fmt.Errorf("invalid tax factor %q: %w", factor, err)
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("invalid tax factor %q: must be positive", factor)
	}
	return &Calculator{factor: d}, nil
}

// TaxInclusive returns round(base * factor, 2), or nil when base is absent.
func (c *Calculator) TaxInclusive(base *decimal.Decimal) *float64 {
	if base == nil {
		return nil
	}
	v := base.Mul(c.factor).Round(2).InexactFloat64()
	return &v
}

// Float converts an optional decimal to an optional float without rounding.
func Float(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

// IsTruthy reports whether a promotion flag read from the store is set.
// Only numeric 1 and boolean true count; drivers hand back bit columns in several shapes.
func IsTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t == 1
	case int32:
		return t == 1
	case int:
		return t == 1
	case float64:
		return t == 1
	case []byte:
		return isTruthyText(string(t))
	case string:
		return isTruthyText(t)
	}
	return false
}

func isTruthyText(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "true") {
		return true
	}
	d, err := decimal.NewFromString(s)
	return err == nil && d.Equal(decimal.NewFromInt(1))
}
