package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("ENV", "production")
	t.Setenv("COMMISSION_RATE", "0.15")

	LoadConfig()

	assert.True(t, UsesMemoryStore())
	assert.True(t, IsProduction())
	assert.Equal(t, 0.15, AppConfig.CommissionRate)
	assert.Equal(t, "8080", AppConfig.AppPort)
	assert.Equal(t, 10*time.Minute, AppConfig.CatalogCacheTTL)
	assert.Equal(t, 90, AppConfig.AffiliateCodeUpdateIntervalDays)
	assert.Equal(t, 1000, AppConfig.LoyaltySilverMin)
}
