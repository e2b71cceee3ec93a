package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBarcodeColumn is used when BARCODE_COL is unset or not allowed.
const DefaultBarcodeColumn = "CodigoBarra"

// AllowedBarcodeColumns is the closed set of barcode column names BARCODE_COL may select.
var AllowedBarcodeColumns = []string{
	"CodigoBarra", "CodigoBarras", "Codigo_Barra", "CodBarra", "EAN", "UPC", "CodigoDeBarras",
}

type Config struct {
	Port        string
	Host        string
	Environment string
	CORSOrigin  string

	DB      DBConfig
	Columns Columns
	// TaxRate is the factor applied to base prices (1.16 = 16% tax)
	TaxRate string

	// Retail rate bridge
	RateAPIURL  string
	RateAPIKey  string
	RateTimeout time.Duration
}

// DBConfig holds the inventory store connection settings
type DBConfig struct {
	Driver       string
	DSN          string // overrides the fields below when set
	Host         string
	Instance     string
	Port         int
	Name         string
	User         string
	Password     string
	Encrypt      bool
	TrustCert    bool
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
}

// Columns maps logical inventory fields to source column names.
// An empty optional column is not selected.
type Columns struct {
	Table          string
	Reference      string
	Barcode        string
	Name           string
	ListPrice      string
	InitialCost    string
	OnPromotion    string
	PromotionPrice string
	WholesalePrice string
	AverageCost    string
	Stock          string
	Category       string
	Brand          string
	Store          string
	Region         string
}

func Load() *Config {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	host, instance, port := parseServer(
		firstEnv("localhost", "SQLSERVER_SERVER", "SQL_HOST"),
	)
	if v := os.Getenv("SQL_HOST"); v != "" {
		host = v
	}
	if v := os.Getenv("SQL_INSTANCE"); v != "" {
		instance = v
	}
	if v := getEnvAsInt("SQL_PORT", 0); v != 0 {
		port = v
	}

	return &Config{
		Port:        getEnv("PORT", "6000"),
		Host:        getEnv("HOST", "127.0.0.1"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		DB: DBConfig{
			Driver:       getEnv("DB_DRIVER", "sqlserver"),
			DSN:          getEnv("DB_DSN", ""),
			Host:         host,
			Instance:     instance,
			Port:         port,
			Name:         firstEnv("inventario_local", "SQLSERVER_DB", "SQL_DB"),
			User:         firstEnv("sa", "SQLSERVER_USER", "SQL_USER"),
			Password:     firstEnv("", "SQLSERVER_PASSWORD", "SQL_PASS"),
			Encrypt:      parseBool(firstEnv("", "SQLSERVER_ENCRYPT", "SQL_ENCRYPT"), false),
			TrustCert:    parseBool(firstEnv("", "SQLSERVER_TRUSTSERVERCERTIFICATE", "SQL_TRUST_SERVER_CERT"), true),
			SQLitePath:   getEnv("SQLITE_PATH", "./inventory.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxIdle:  getEnvAsDuration("DB_CONN_MAX_IDLE", 30*time.Second),
		},
		Columns: Columns{
			Table:          getEnv("INVENTORY_TABLE", "dbo.INVENTARIO"),
			Reference:      getEnv("COL_REFERENCE", "Referencia"),
			Barcode:        BarcodeColumn(os.Getenv("BARCODE_COL")),
			Name:           getEnv("COL_NAME", "Nombre"),
			ListPrice:      getEnv("COL_LIST_PRICE", "PrecioDetal"),
			InitialCost:    getEnv("COL_INITIAL_COST", "CostoInicial"),
			// promotion pricing is opt-in; the stock INVENTARIO table has no promotion columns
			OnPromotion:    os.Getenv("COL_ON_PROMOTION"),
			PromotionPrice: os.Getenv("COL_PROMOTION_PRICE"),
			WholesalePrice: os.Getenv("COL_WHOLESALE_PRICE"),
			AverageCost:    os.Getenv("COL_AVERAGE_COST"),
			Stock:          os.Getenv("COL_STOCK"),
			Category:       os.Getenv("COL_CATEGORY"),
			Brand:          os.Getenv("COL_BRAND"),
			Store:          os.Getenv("COL_STORE"),
			Region:         os.Getenv("COL_REGION"),
		},
		TaxRate:     getEnv("TAX_RATE", "1.16"),
		RateAPIURL:  os.Getenv("TASA_API_URL"),
		RateAPIKey:  os.Getenv("TASA_API_KEY"),
		RateTimeout: getEnvAsDuration("TASA_TIMEOUT", 10*time.Second),
	}
}

// BarcodeColumn returns name when it is in AllowedBarcodeColumns, DefaultBarcodeColumn otherwise.
func BarcodeColumn(name string) string {
	name = strings.TrimSpace(name)
	for _, allowed := range AllowedBarcodeColumns {
		if name == allowed {
			return name
		}
	}
	return DefaultBarcodeColumn
}

// parseServer splits "host\instance" and "host,port" forms.
func parseServer(raw string) (host, instance string, port int) {
	host = raw
	if h, p, ok := strings.Cut(host, ","); ok {
		host = h
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			port = n
		}
	}
	if h, inst, ok := strings.Cut(host, `\`); ok {
		host, instance = h, inst
	}
	return host, instance, port
}

func firstEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func parseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func getEnvAsBool(key string, defaultValue bool) bool {
	return parseBool(os.Getenv(key), defaultValue)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return result
}
