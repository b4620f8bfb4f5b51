package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CATALOG_URL", "http://catalog.local/")
	t.Setenv("CATALOG_LIMIT", "not-a-number")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("PAYMENT_DELAY", "bogus")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "http://catalog.local", cfg.CatalogURL)
	assert.Equal(t, 100, cfg.CatalogLimit)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.EqualValues(t, 83, cfg.CatalogPriceScale)
	assert.Equal(t, "products", cfg.ESIndex)
}
