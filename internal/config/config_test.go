package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarcodeColumn_AllowList(t *testing.T) {
	for _, col := range AllowedBarcodeColumns {
		assert.Equal(t, col, BarcodeColumn(col))
	}
	assert.Equal(t, "EAN", BarcodeColumn("  EAN "))
}

func TestBarcodeColumn_FallsBackOnUnknown(t *testing.T) {
	assert.Equal(t, DefaultBarcodeColumn, BarcodeColumn(""))
	assert.Equal(t, DefaultBarcodeColumn, BarcodeColumn("ean"))
	assert.Equal(t, DefaultBarcodeColumn, BarcodeColumn("CodigoBarra; DROP TABLE x"))
}

func TestParseServer(t *testing.T) {
	tests := []struct {
		raw      string
		host     string
		instance string
		port     int
	}{
		{"localhost", "localhost", "", 0},
		{`db01\SQLEXPRESS`, "db01", "SQLEXPRESS", 0},
		{"db01,1433", "db01", "", 1433},
		{`db01\INST,1444`, "db01", "INST", 1444},
		{"db01,abc", "db01", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, instance, port := parseServer(tt.raw)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.instance, instance)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "BARCODE_COL", "SQLSERVER_SERVER", "SQL_HOST", "TAX_RATE", "SQL_ENCRYPT", "SQLSERVER_ENCRYPT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "6000", cfg.Port)
	assert.Equal(t, "sqlserver", cfg.DB.Driver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, DefaultBarcodeColumn, cfg.Columns.Barcode)
	assert.Equal(t, "Referencia", cfg.Columns.Reference)
	assert.Equal(t, "1.16", cfg.TaxRate)
	assert.False(t, cfg.DB.Encrypt)
	assert.Equal(t, 30*time.Second, cfg.DB.ConnMaxIdle)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SQLSERVER_SERVER", `srv\INST`)
	t.Setenv("SQL_PORT", "1500")
	t.Setenv("SQL_ENCRYPT", "yes")
	t.Setenv("BARCODE_COL", "UPC")
	t.Setenv("COL_STOCK", "Existencia")

	cfg := Load()

	assert.Equal(t, "srv", cfg.DB.Host)
	assert.Equal(t, "INST", cfg.DB.Instance)
	assert.Equal(t, 1500, cfg.DB.Port)
	assert.True(t, cfg.DB.Encrypt)
	assert.Equal(t, "UPC", cfg.Columns.Barcode)
	assert.Equal(t, "Existencia", cfg.Columns.Stock)
}

func TestLoad_PromotionColumnsOptIn(t *testing.T) {
	t.Setenv("COL_ON_PROMOTION", "")
	t.Setenv("COL_PROMOTION_PRICE", "")
	cfg := Load()
	assert.Empty(t, cfg.Columns.OnPromotion)
	assert.Empty(t, cfg.Columns.PromotionPrice)

	t.Setenv("COL_ON_PROMOTION", "EnPromocion")
	t.Setenv("COL_PROMOTION_PRICE", "PrecioPromocion")
	cfg = Load()
	assert.Equal(t, "EnPromocion", cfg.Columns.OnPromotion)
	assert.Equal(t, "PrecioPromocion", cfg.Columns.PromotionPrice)
}

func TestLoadStation_Defaults(t *testing.T) {
	t.Setenv("SCAN_DEVICES", "")
	t.Setenv("STATION_STORE", "")
	t.Setenv("API_BASE", "http://api.local/")

	cfg := LoadStation()

	assert.Equal(t, "http://api.local", cfg.APIBase)
	assert.Equal(t, 12*time.Second, cfg.APITimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.DedupeWindow)
	assert.Equal(t, []string{"-=Keyboard wedge scanner"}, cfg.Devices)
	assert.Equal(t, "./scanstation.db", cfg.StorePath)
}
