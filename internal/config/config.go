package config

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Shop      ShopConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port          string
	Env           string
	MigrationsDir string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
}

// DSN builds the pgx connection string
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Database +
		"?sslmode=" + c.SSLMode + "&search_path=" + c.Schema
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// StorageConfig selects where uploaded images go. Driver is "disk" or "s3".
type StorageConfig struct {
	Driver            string
	UploadDir         string
	PublicBaseURL     string
	MaxUploadBytes    int64
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// ShopConfig holds storefront pricing rules
type ShopConfig struct {
	ShippingFee       decimal.Decimal
	FreeShippingAbove decimal.Decimal
	LowStockThreshold int
	ResetCodeTTL      time.Duration
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("STORAGE_DRIVER", "disk")
	viper.SetDefault("STORAGE_UPLOAD_DIR", "uploads")
	viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "/uploads")
	viper.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 5<<20)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_PATH_STYLE", true)
	viper.SetDefault("STORAGE_PRESIGN_EXPIRATION", "15m")
	viper.SetDefault("SHOP_SHIPPING_FEE", "30000")
	viper.SetDefault("SHOP_FREE_SHIPPING_ABOVE", "500000")
	viper.SetDefault("SHOP_LOW_STOCK_THRESHOLD", 5)
	viper.SetDefault("SHOP_RESET_CODE_TTL", "15m")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:          viper.GetString("SERVER_PORT"),
			Env:           viper.GetString("SERVER_ENV"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Storage: StorageConfig{
			Driver:            viper.GetString("STORAGE_DRIVER"),
			UploadDir:         viper.GetString("STORAGE_UPLOAD_DIR"),
			PublicBaseURL:     viper.GetString("STORAGE_PUBLIC_BASE_URL"),
			MaxUploadBytes:    viper.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			Endpoint:          viper.GetString("STORAGE_ENDPOINT"),
			Region:            viper.GetString("STORAGE_REGION"),
			Bucket:            viper.GetString("STORAGE_BUCKET"),
			AccessKey:         viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:         viper.GetString("STORAGE_SECRET_KEY"),
			UseSSL:            viper.GetBool("STORAGE_USE_SSL"),
			UsePathStyle:      viper.GetBool("STORAGE_USE_PATH_STYLE"),
			PresignExpiration: viper.GetDuration("STORAGE_PRESIGN_EXPIRATION"),
		},
		Shop: ShopConfig{
			ShippingFee:       decimalOrZero(viper.GetString("SHOP_SHIPPING_FEE")),
			FreeShippingAbove: decimalOrZero(viper.GetString("SHOP_FREE_SHIPPING_ABOVE")),
			LowStockThreshold: viper.GetInt("SHOP_LOW_STOCK_THRESHOLD"),
			ResetCodeTTL:      viper.GetDuration("SHOP_RESET_CODE_TTL"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		log.Printf("Warning: invalid decimal %q in config: %v", s, err)
		return decimal.Zero
	}
	return d
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
