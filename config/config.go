package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cart store backends
const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStorePostgres = "postgres"
)

// Media store backends
const (
	MediaStoreBackend = "backend"
	MediaStoreR2      = "r2"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	AllowedOrigin string
	FrontendURL   string // Storefront SPA origin, used for redirects
	JWTSecret     string
	SessionExpiry time.Duration

	// Remote commerce API
	BackendBaseURL string
	BackendTimeout time.Duration
	MediaBaseURL   string // Prefix for relative image paths returned by the API

	// Identity provider (Firebase) + Google OAuth
	FirebaseAPIKey      string
	FirebaseAdminEmails []string
	IdentityBaseURL     string
	SecureTokenBaseURL  string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string

	// Search box
	SearchDebounce      time.Duration
	SearchMinQueryLen   int
	SearchResultLimit   int
	SearchSuggestLimit  int
	SearchTimeout       time.Duration
	SearchSeeMoreRatio  float64
	SearchSeeMoreMinHit int

	// Cart storage
	CartStore string
	CartTTL   time.Duration
	DBUrl     string
	RedisURL  string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration

	// Media storage
	MediaStore        string
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string

	// Cache
	CacheCategoryTTL       time.Duration
	CacheProductTTL        time.Duration
	CacheRecommendationTTL time.Duration
	CacheStatsTTL          time.Duration

	// Upload Configuration
	MaxUploadSizeMB int64
	R2UploadTimeout time.Duration

	// Business Rules
	MaxCartQuantity int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env is optional, docker/prod rely on system env vars
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	return cfg
}

const defaultJWTSecret = "default_secret_CHANGE_ME"

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		SessionExpiry: getDurationEnv("SESSION_EXPIRY", time.Hour),

		BackendBaseURL: strings.TrimSuffix(getEnv("BACKEND_BASE_URL", ""), "/"),
		BackendTimeout: getDurationEnv("BACKEND_TIMEOUT", 10*time.Second),
		MediaBaseURL:   strings.TrimSuffix(getEnv("MEDIA_BASE_URL", ""), "/"),

		FirebaseAPIKey:      getEnv("FIREBASE_API_KEY", ""),
		FirebaseAdminEmails: getListEnv("FIREBASE_ADMIN_EMAILS"),
		IdentityBaseURL:     getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		SecureTokenBaseURL:  getEnv("SECURE_TOKEN_BASE_URL", "https://securetoken.googleapis.com/v1"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:   getEnv("GOOGLE_REDIRECT_URL", "postmessage"),

		// Search defaults mirror the storefront header: 300ms debounce, 2 chars, 8 results, 5 suggestions
		SearchDebounce:      getDurationEnv("SEARCH_DEBOUNCE", 300*time.Millisecond),
		SearchMinQueryLen:   getIntEnv("SEARCH_MIN_QUERY_LEN", 2),
		SearchResultLimit:   getIntEnv("SEARCH_RESULT_LIMIT", 8),
		SearchSuggestLimit:  getIntEnv("SEARCH_SUGGEST_LIMIT", 5),
		SearchTimeout:       getDurationEnv("SEARCH_TIMEOUT", 5*time.Second),
		SearchSeeMoreRatio:  getFloatEnv("SEARCH_SEE_MORE_RATIO", 0.6),
		SearchSeeMoreMinHit: getIntEnv("SEARCH_SEE_MORE_MIN_RESULTS", 3),

		CartStore: strings.ToLower(getEnv("CART_STORE", CartStoreMemory)),
		CartTTL:   getDurationEnv("CART_TTL", 30*24*time.Hour),
		DBUrl:     getEnv("DB_DSN", ""),
		RedisURL:  getEnv("REDIS_URL", ""),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 10),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		MediaStore:        strings.ToLower(getEnv("MEDIA_STORE", MediaStoreBackend)),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Cache defaults: 30m Category, 10m Product, 10m Recommendations, 1m Stats
		CacheCategoryTTL:       getDurationEnv("CACHE_CATEGORY_TTL", 30*time.Minute),
		CacheProductTTL:        getDurationEnv("CACHE_PRODUCT_TTL", 10*time.Minute),
		CacheRecommendationTTL: getDurationEnv("CACHE_RECOMMENDATION_TTL", 10*time.Minute),
		CacheStatsTTL:          getDurationEnv("CACHE_STATS_TTL", time.Minute),

		// Upload defaults: 10MB max, 30s timeout
		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		R2UploadTimeout: getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 1000),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.BackendBaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.FirebaseAPIKey == "" {
		errs = append(errs, errors.New("FIREBASE_API_KEY is required"))
	}
	switch c.CartStore {
	case CartStoreMemory:
	case CartStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when CART_STORE=redis"))
		}
	case CartStorePostgres:
		if c.DBUrl == "" {
			errs = append(errs, errors.New("DB_DSN is required when CART_STORE=postgres"))
		}
	default:
		errs = append(errs, errors.New("CART_STORE must be one of memory, redis, postgres"))
	}
	switch c.MediaStore {
	case MediaStoreBackend:
	case MediaStoreR2:
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2AccessKeySecret == "" || c.R2BucketName == "" || c.R2PublicURL == "" {
			errs = append(errs, errors.New("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET, R2_BUCKET_NAME and R2_PUBLIC_URL are required when MEDIA_STORE=r2"))
		}
	default:
		errs = append(errs, errors.New("MEDIA_STORE must be one of backend, r2"))
	}
	if c.SearchMinQueryLen < 1 {
		errs = append(errs, errors.New("SEARCH_MIN_QUERY_LEN must be at least 1"))
	}
	return errors.Join(errs...)
}

// IsAdminEmail reports whether email is listed in FIREBASE_ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range c.FirebaseAdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
