package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int

	LogLevel  string
	LogFormat string

	StorageDriver string
	StorageDSN    string

	CatalogURL        string
	CatalogLimit      int
	CatalogPriceScale int64
	CatalogTimeout    time.Duration

	SessionSecret []byte
	SessionTTL    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	NotificationDuration time.Duration
	PaymentDelay         time.Duration
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded: %v; using system environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),

		LogLevel:  EnvDefault("LOG_LEVEL", "info"),
		LogFormat: EnvDefault("LOG_FORMAT", "json"),

		StorageDriver: EnvDefault("STORAGE_DRIVER", "sqlite"),
		StorageDSN:    EnvDefault("STORAGE_DSN", "storefront.db"),

		CatalogURL:        strings.TrimRight(EnvDefault("CATALOG_URL", "https://dummyjson.com"), "/"),
		CatalogLimit:      EnvIntDefault("CATALOG_LIMIT", 100),
		CatalogPriceScale: int64(EnvIntDefault("CATALOG_PRICE_SCALE", 83)),
		CatalogTimeout:    EnvDurationDefault("CATALOG_TIMEOUT", 10*time.Second),

		SessionSecret: []byte(EnvDefault("SESSION_SECRET", "storefront-dev-secret")),
		SessionTTL:    EnvDurationDefault("SESSION_TTL", 24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "storefront_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		NotificationDuration: EnvDurationDefault("NOTIFICATION_DEFAULT_DURATION", 5*time.Second),
		PaymentDelay:         EnvDurationDefault("PAYMENT_DELAY", 2*time.Second),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
