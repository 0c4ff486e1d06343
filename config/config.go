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
	Port              string
	DBUrl             string
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	FrontendURL       string
	CookieSecure      bool
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Onboarding wizard
	UploadMinBytes       int64 // 0 disables the size floor
	UploadMaxBytes       int64
	DraftTTL             time.Duration
	FlagCacheTTL         time.Duration
	AllowCustomSkills    bool
	OnboardingLiveChecks bool // validate each field as it changes instead of on advance only
	ClamAVAddress        string // empty disables malware scanning of resumes
	ClamAVTimeout        time.Duration
	// Failed login tracking
	LoginMaxAttempts int
	LoginBlock       time.Duration
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int
	RateLimitLoginThreshold  int
	// Resume object storage (S3 / Wasabi)
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	// Email (SMTP or Resend)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	ResendAPIKey  string
	// Tracing
	OTELCollectorURL string
	ServiceName      string
}

func LoadConfig() (*Config, error) {
	// Only effective locally; in production the variables come from the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),
		// Trailing slash would produce ".co//auth"
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CookieSecure:      getEnvBool("COOKIE_SECURE", os.Getenv("GIN_MODE") == "release"),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),

		UploadMinBytes:       getEnvInt64("UPLOAD_MIN_BYTES", 100*1024),
		UploadMaxBytes:       getEnvInt64("UPLOAD_MAX_BYTES", 5000*1024),
		DraftTTL:             time.Duration(getEnvInt("DRAFT_TTL_MINUTES", 120)) * time.Minute,
		FlagCacheTTL:         time.Duration(getEnvInt("FLAG_CACHE_TTL_SECONDS", 300)) * time.Second,
		AllowCustomSkills:    getEnvBool("ALLOW_CUSTOM_SKILLS", true),
		OnboardingLiveChecks: getEnvBool("ONBOARDING_LIVE_CHECKS", false),
		ClamAVAddress:        getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:        time.Duration(getEnvInt("CLAMAV_TIMEOUT_SECONDS", 30)) * time.Second,

		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginBlock:       time.Duration(getEnvInt("LOGIN_BLOCK_MINUTES", 15)) * time.Minute,

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),

		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "ap-south-1"),
		S3Bucket:          getEnv("RESUME_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "hello@applybrain.ai"),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),

		OTELCollectorURL: getEnv("OTEL_COLLECTOR_URL", ""),
		ServiceName:      getEnv("SERVICE_NAME", "applybrain-backend"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Drafts and rate limits will use in-memory fallback.")
	}

	if cfg.UploadMaxBytes > 0 && cfg.UploadMinBytes > cfg.UploadMaxBytes {
		log.Println("WARNING: UPLOAD_MIN_BYTES exceeds UPLOAD_MAX_BYTES. Dropping the size floor.")
		cfg.UploadMinBytes = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
