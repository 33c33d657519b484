package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the decision core.
type Config struct {
	Port string

	// Instrument and feed
	Symbol           string
	UseMockFeed      bool
	MockStartPrice   float64
	MockTickInterval time.Duration

	// Strategy parameters
	ParamsPath  string
	Environment string

	// Strategy toggles
	EnableImbalance     bool
	EnableMeanReversion bool
	EnableWickCapture   bool

	// Decision pipeline
	LotStep          float64
	ThrottleInterval time.Duration
	OffHoursStartUTC int // hour of day, inclusive
	OffHoursEndUTC   int // hour of day, exclusive

	// Paper execution
	PaperFeeRate     float64
	PaperSlippageBps float64

	// Risk limits
	MaxDailyLoss         float64
	TrailingStopFraction float64
	MaxOrderNotional     float64

	// Persistence
	DBPath string

	// Auth
	JWTSecret string
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Symbol:               getEnv("SYMBOL", "BTCUSDT"),
		UseMockFeed:          getEnv("USE_MOCK_FEED", "true") == "true",
		MockStartPrice:       getEnvFloat("MOCK_START_PRICE", 100.0),
		MockTickInterval:     getEnvDuration("MOCK_TICK_INTERVAL", 250*time.Millisecond),
		ParamsPath:           getEnv("PARAMS_PATH", "params.yaml"),
		Environment:          getEnv("ENVIRONMENT", "paper"),
		EnableImbalance:      getEnv("ENABLE_IMBALANCE", "true") == "true",
		EnableMeanReversion:  getEnv("ENABLE_MEAN_REVERSION", "true") == "true",
		EnableWickCapture:    getEnv("ENABLE_WICK_CAPTURE", "true") == "true",
		LotStep:              getEnvFloat("LOT_STEP", 0.001),
		ThrottleInterval:     getEnvDuration("THROTTLE_INTERVAL", 30*time.Second),
		OffHoursStartUTC:     getEnvInt("OFF_HOURS_START_UTC", 22),
		OffHoursEndUTC:       getEnvInt("OFF_HOURS_END_UTC", 6),
		PaperFeeRate:         getEnvFloat("PAPER_FEE_RATE", 0.0004),
		PaperSlippageBps:     getEnvFloat("PAPER_SLIPPAGE_BPS", 1.0),
		MaxDailyLoss:         getEnvFloat("MAX_DAILY_LOSS", 2000.0),
		TrailingStopFraction: getEnvFloat("TRAILING_STOP_FRACTION", 0.5),
		MaxOrderNotional:     getEnvFloat("MAX_ORDER_NOTIONAL", 10000.0),
		DBPath:               getEnv("DB_PATH", "./data/decisions.db"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
	}, nil
}

// OffHours reports whether t falls inside the configured low-liquidity
// window. The window may wrap midnight (start 22, end 6).
func (c *Config) OffHours(t time.Time) bool {
	if c.OffHoursStartUTC == c.OffHoursEndUTC {
		return false
	}
	hour := t.UTC().Hour()
	if c.OffHoursStartUTC < c.OffHoursEndUTC {
		return hour >= c.OffHoursStartUTC && hour < c.OffHoursEndUTC
	}
	return hour >= c.OffHoursStartUTC || hour < c.OffHoursEndUTC
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
