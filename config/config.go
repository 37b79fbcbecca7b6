package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort            string   `mapstructure:"APP_PORT"`
	Env                string   `mapstructure:"ENV"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin  int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Storage. DATABASE_DRIVER is "mongo" or "memory".
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	SeedCatalog    bool   `mapstructure:"SEED_CATALOG"`

	// Redis configuration. An empty address disables caching.
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int           `mapstructure:"REDIS_CACHE_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	// Identity provider session verification.
	ClerkJWKSURL         string `mapstructure:"CLERK_JWKS_URL"`
	ClerkIssuer          string `mapstructure:"CLERK_ISSUER"`
	SessionSigningSecret string `mapstructure:"SESSION_SIGNING_SECRET"`

	// Subject ids that are always treated as admins.
	AdminUserIDs []string `mapstructure:"ADMIN_USER_IDS"`

	// Affiliate program.
	CommissionRate                  float64 `mapstructure:"COMMISSION_RATE"`
	AffiliateCodeUpdateIntervalDays int     `mapstructure:"AFFILIATE_CODE_UPDATE_INTERVAL_DAYS"`
	LoyaltySilverMin                int     `mapstructure:"LOYALTY_SILVER_MIN"`
	LoyaltyGoldMin                  int     `mapstructure:"LOYALTY_GOLD_MIN"`
	LoyaltyPlatinumMin              int     `mapstructure:"LOYALTY_PLATINUM_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments use the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("DATABASE_DRIVER", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "glowclinic")
	viper.SetDefault("SEED_CATALOG", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("CATALOG_CACHE_TTL", "10m")
	viper.SetDefault("CLERK_JWKS_URL", "")
	viper.SetDefault("CLERK_ISSUER", "")
	viper.SetDefault("SESSION_SIGNING_SECRET", "")
	viper.SetDefault("ADMIN_USER_IDS", []string{})
	viper.SetDefault("COMMISSION_RATE", 0.10)
	viper.SetDefault("AFFILIATE_CODE_UPDATE_INTERVAL_DAYS", 90)
	viper.SetDefault("LOYALTY_SILVER_MIN", 1000)
	viper.SetDefault("LOYALTY_GOLD_MIN", 5000)
	viper.SetDefault("LOYALTY_PLATINUM_MIN", 10000)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

func UsesMemoryStore() bool {
	return AppConfig.DatabaseDriver == "memory"
}
