package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StationConfig configures the scan station client.
type StationConfig struct {
	Environment string
	StationID   string
	APIBase     string
	APITimeout  time.Duration

	DedupeWindow time.Duration
	Warmup       time.Duration
	PrimeTTL     time.Duration
	// Devices lists scanner inputs as "path=label" pairs; "-" is standard input.
	Devices []string
	// StorePath is the SQLite file holding preferences when Redis is not used
	StorePath string

	// Redis Configuration (optional - remembered device and priming flag)
	UseRedis      bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

func LoadStation() *StationConfig {
	_ = godotenv.Load()

	var devices []string
	for _, d := range strings.Split(getEnv("SCAN_DEVICES", "-=Keyboard wedge scanner"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			devices = append(devices, d)
		}
	}

	return &StationConfig{
		Environment:   getEnv("ENVIRONMENT", "development"),
		StationID:     getEnv("STATION_ID", "default"),
		APIBase:       strings.TrimRight(getEnv("API_BASE", "http://127.0.0.1:6000"), "/"),
		APITimeout:    getEnvAsDuration("API_TIMEOUT", 12*time.Second),
		DedupeWindow:  getEnvAsDuration("SCAN_DEDUPE_WINDOW", 1500*time.Millisecond),
		Warmup:        getEnvAsDuration("SCAN_WARMUP", 600*time.Millisecond),
		PrimeTTL:      getEnvAsDuration("SCAN_PRIME_TTL", 2*time.Minute),
		Devices:       devices,
		StorePath:     getEnv("STATION_STORE", "./scanstation.db"),
		UseRedis:      getEnvAsBool("USE_REDIS", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}
