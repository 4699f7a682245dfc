package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"

	FilesGCS   = "gcs"
	FilesLocal = "local"

	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultEncryptionKey = "your-encryption-key-change-in-production"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string `koanf:"port"`
	Environment string `koanf:"environment"`
	Debug       bool   `koanf:"debug"`
	LogJSON     bool   `koanf:"log_json"`
	CORSOrigins string `koanf:"cors_origins"` // comma separated

	// Google Cloud
	ProjectID string `koanf:"project_id"`
	Location  string `koanf:"location"`

	// Gemini Model
	GeminiModel  string `koanf:"gemini_model"`
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// Authentication
	JWTSecret      string `koanf:"jwt_secret"`
	JWTExpiryHours int    `koanf:"jwt_expiry_hours"`
	GoogleClientID string `koanf:"google_client_id"`
	EncryptionKey  string `koanf:"encryption_key"`
	AdminEmails    string `koanf:"admin_emails"` // comma separated

	// Persistence
	StoreBackend string `koanf:"store_backend"`
	SQLitePath   string `koanf:"sqlite_path"`
	FileBackend  string `koanf:"file_backend"`
	CVBucketName string `koanf:"cv_bucket_name"`
	UploadDir    string `koanf:"upload_dir"`
	MaxUploadMB  int    `koanf:"max_upload_mb"`

	// Listing source
	SourceBaseURL           string  `koanf:"source_base_url"`
	SourceTimeoutSeconds    int     `koanf:"source_timeout_seconds"`
	SourceRequestsPerSecond float64 `koanf:"source_requests_per_second"`
	SourceBurst             int     `koanf:"source_burst"`

	// Recommendation engine
	PagesPerContext            int    `koanf:"pages_per_context"`
	MaxConcurrentSearches      int    `koanf:"max_concurrent_searches"`
	RemoteWorkSchedule         string `koanf:"remote_work_schedule"`
	DefaultRecommendationLimit int    `koanf:"default_recommendation_limit"`
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		Port:        "8080",
		Environment: EnvDevelopment,
		CORSOrigins: "http://localhost:3000,http://localhost:5173",

		Location:    "us-central1",
		GeminiModel: "gemini-2.5-flash",

		JWTSecret:      defaultJWTSecret,
		JWTExpiryHours: 24,
		EncryptionKey:  defaultEncryptionKey,

		StoreBackend: StoreFirestore,
		SQLitePath:   "hiremind.db",
		FileBackend:  FilesGCS,
		UploadDir:    "uploads",
		MaxUploadMB:  5,

		SourceBaseURL:           "https://www.linkedin.com",
		SourceTimeoutSeconds:    10,
		SourceRequestsPerSecond: 2,
		SourceBurst:             4,

		PagesPerContext:            1,
		MaxConcurrentSearches:      4,
		RemoteWorkSchedule:         "2",
		DefaultRecommendationLimit: 50,
	}
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// SourceTimeout returns the per-request timeout for the listing source
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Admins returns the normalized admin email list
func (c *Config) Admins() []string {
	return splitList(strings.ToLower(c.AdminEmails))
}

// AllowedOrigins returns the CORS origin list
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port == "" {
		return &ConfigError{Field: "PORT", Message: "PORT must not be empty"}
	}
	if len(c.AllowedOrigins()) == 0 {
		return &ConfigError{Field: "CORS_ORIGINS", Message: "CORS_ORIGINS must list at least one origin"}
	}

	if c.JWTSecret == "" {
		return &ConfigError{Field: "JWT_SECRET", Message: "JWT_SECRET is required"}
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return &ConfigError{Field: "JWT_SECRET", Message: "JWT_SECRET must be changed in production"}
	}
	if c.EncryptionKey == "" {
		return &ConfigError{Field: "ENCRYPTION_KEY", Message: "ENCRYPTION_KEY is required"}
	}
	if c.IsProduction() && c.EncryptionKey == defaultEncryptionKey {
		return &ConfigError{Field: "ENCRYPTION_KEY", Message: "ENCRYPTION_KEY must be changed in production"}
	}

	switch c.StoreBackend {
	case StoreFirestore:
		if c.ProjectID == "" {
			return &ConfigError{Field: "PROJECT_ID", Message: "PROJECT_ID is required for the firestore store backend"}
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return &ConfigError{Field: "SQLITE_PATH", Message: "SQLITE_PATH is required for the sqlite store backend"}
		}
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: fmt.Sprintf("unknown store backend %q", c.StoreBackend)}
	}

	switch c.FileBackend {
	case FilesGCS:
		if c.CVBucketName == "" {
			return &ConfigError{Field: "CV_BUCKET_NAME", Message: "CV_BUCKET_NAME is required for the gcs file backend"}
		}
	case FilesLocal:
		if c.UploadDir == "" {
			return &ConfigError{Field: "UPLOAD_DIR", Message: "UPLOAD_DIR is required for the local file backend"}
		}
	default:
		return &ConfigError{Field: "FILE_BACKEND", Message: fmt.Sprintf("unknown file backend %q", c.FileBackend)}
	}

	if c.ProjectID == "" && c.GeminiAPIKey == "" {
		return &ConfigError{Field: "GEMINI_API_KEY", Message: "either PROJECT_ID (Vertex AI) or GEMINI_API_KEY is required"}
	}

	if c.SourceTimeoutSeconds <= 0 {
		return &ConfigError{Field: "SOURCE_TIMEOUT_SECONDS", Message: "SOURCE_TIMEOUT_SECONDS must be positive"}
	}
	if c.SourceRequestsPerSecond <= 0 || c.SourceBurst <= 0 {
		return &ConfigError{Field: "SOURCE_REQUESTS_PER_SECOND", Message: "source rate limit must be positive"}
	}
	if c.PagesPerContext <= 0 {
		return &ConfigError{Field: "PAGES_PER_CONTEXT", Message: "PAGES_PER_CONTEXT must be positive"}
	}
	if c.MaxConcurrentSearches <= 0 {
		return &ConfigError{Field: "MAX_CONCURRENT_SEARCHES", Message: "MAX_CONCURRENT_SEARCHES must be positive"}
	}
	if c.DefaultRecommendationLimit <= 0 {
		return &ConfigError{Field: "DEFAULT_RECOMMENDATION_LIMIT", Message: "DEFAULT_RECOMMENDATION_LIMIT must be positive"}
	}
	if c.MaxUploadMB <= 0 {
		return &ConfigError{Field: "MAX_UPLOAD_MB", Message: "MAX_UPLOAD_MB must be positive"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
