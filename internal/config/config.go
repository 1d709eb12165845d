package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Shopify   ShopifyConfig
	Cache     CacheConfig
	Cart      CartConfig
	Browse    BrowseConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type ShopifyConfig struct {
	StoreDomain     string
	APIVersion      string
	StorefrontToken string
	Timeout         time.Duration
	PageSize        int
}

type CacheConfig struct {
	Enabled    bool
	ProductTTL time.Duration
	VendorTTL  time.Duration
}

type CartConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
}

type BrowseConfig struct {
	Debounce   time.Duration
	SessionTTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	// .env values are exported to the process first so that libraries reading the
	// environment directly see the same settings as viper
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env into environment: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SHOPIFY_API_VERSION", "2025-07")
	viper.SetDefault("SHOPIFY_TIMEOUT", "10s")
	viper.SetDefault("SHOPIFY_PAGE_SIZE", 50)
	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("CACHE_PRODUCT_TTL", "5m")
	viper.SetDefault("CACHE_VENDOR_TTL", "10m")
	viper.SetDefault("CART_TOKEN_TTL", "720h")
	viper.SetDefault("BROWSE_DEBOUNCE", "150ms")
	viper.SetDefault("BROWSE_SESSION_TTL", "30m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Shopify: ShopifyConfig{
			StoreDomain:     viper.GetString("SHOPIFY_STORE_DOMAIN"),
			APIVersion:      viper.GetString("SHOPIFY_API_VERSION"),
			StorefrontToken: viper.GetString("SHOPIFY_STOREFRONT_TOKEN"),
			Timeout:         viper.GetDuration("SHOPIFY_TIMEOUT"),
			PageSize:        viper.GetInt("SHOPIFY_PAGE_SIZE"),
		},
		Cache: CacheConfig{
			Enabled:    viper.GetBool("CACHE_ENABLED"),
			ProductTTL: viper.GetDuration("CACHE_PRODUCT_TTL"),
			VendorTTL:  viper.GetDuration("CACHE_VENDOR_TTL"),
		},
		Cart: CartConfig{
			TokenSecret: viper.GetString("CART_TOKEN_SECRET"),
			TokenTTL:    viper.GetDuration("CART_TOKEN_TTL"),
		},
		Browse: BrowseConfig{
			Debounce:   viper.GetDuration("BROWSE_DEBOUNCE"),
			SessionTTL: viper.GetDuration("BROWSE_SESSION_TTL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
