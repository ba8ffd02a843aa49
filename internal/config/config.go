package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"guestbook/internal/model"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	RedisURL string

	IdentitySecret string
	IdentityMaxAge int
	IdentitySecure bool

	RateLimitRPS   float64
	RateLimitBurst int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	App AppLimits
}

// AppLimits are the feed and attachment limits. Defaults can be overridden
// by the YAML file named in GUESTBOOK_CONFIG.
type AppLimits struct {
	PageSize           int      `yaml:"page_size"`
	MaxPageSize        int      `yaml:"max_page_size"`
	MaxContentLength   int      `yaml:"max_content_length"`
	MaxFileSize        int64    `yaml:"max_file_size"`
	SupportedFileTypes []string `yaml:"supported_file_types"`
	EnrichConcurrency  int      `yaml:"enrich_concurrency"`
	PopularLimit       int      `yaml:"popular_limit"`
}

// DefaultAppLimits returns the built-in limits.
func DefaultAppLimits() AppLimits {
	return AppLimits{
		PageSize:           model.DefaultPageSize,
		MaxPageSize:        model.DefaultMaxPageSize,
		MaxContentLength:   model.DefaultMaxContentLength,
		MaxFileSize:        model.DefaultMaxFileSize,
		SupportedFileTypes: append([]string(nil), model.DefaultSupportedFileTypes...),
		EnrichConcurrency:  8,
		PopularLimit:       model.DefaultPopularLimit,
	}
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	identityMaxAge, err := strconv.Atoi(os.Getenv("IDENTITY_MAX_AGE"))
	if err != nil || identityMaxAge <= 0 {
		identityMaxAge = 31536000 // 1 year
	}

	rateLimitRPS, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rateLimitRPS <= 0 {
		rateLimitRPS = 2
	}

	rateLimitBurst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || rateLimitBurst <= 0 {
		rateLimitBurst = 5
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	app := DefaultAppLimits()
	if path := os.Getenv("GUESTBOOK_CONFIG"); path != "" {
		app, err = LoadAppLimits(path, app)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		ServerPort: serverPort,

		RedisURL: redisURL,

		IdentitySecret: os.Getenv("IDENTITY_SECRET"),
		IdentityMaxAge: identityMaxAge,
		IdentitySecure: os.Getenv("IDENTITY_COOKIE_SECURE") == "true",

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		App: app,
	}, nil
}
