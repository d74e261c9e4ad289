// Package config provides configuration loading and validation for the
// leaderboard API server. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Snapshot sources. Exactly one primary source is used, in order of
	// preference: DatabaseURL, the S3 object, then SnapshotFile.
	SnapshotFile string `koanf:"snapshot_file"`
	DatabaseURL  string `koanf:"database_url"`

	// Snapshot object storage (AWS S3 or Cloudflare R2)
	S3Bucket          string `koanf:"snapshot_s3_bucket"`
	S3Key             string `koanf:"snapshot_s3_key"`
	S3Endpoint        string `koanf:"snapshot_s3_endpoint"`
	S3AccessKeyID     string `koanf:"snapshot_s3_access_key_id"`
	S3SecretAccessKey string `koanf:"snapshot_s3_secret_access_key"`

	// Redis snapshot cache, optional
	RedisURL             string `koanf:"redis_url"`
	SnapshotCacheTTLSecs int    `koanf:"snapshot_cache_ttl_seconds"` // Default: 30

	// Search ranking calibration file, optional
	RankingCalibrationPath string `koanf:"ranking_calibration_path"`

	// HTTP surface
	CORSAllowedOrigins       []string `koanf:"cors_allowed_origins"`
	SearchRateLimitPerMinute int      `koanf:"search_rate_limit_per_minute"` // 0 disables

	// Observability
	MetricsEnabled    bool    `koanf:"metrics_enabled"`
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingExporter   string  `koanf:"tracing_exporter"` // otlp-http or otlp-grpc
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
	TracingInsecure   bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingSnapshotSource    = errors.New("one of SNAPSHOT_FILE, DATABASE_URL or SNAPSHOT_S3_BUCKET is required")
	ErrMissingS3Key             = errors.New("SNAPSHOT_S3_KEY is required")
	ErrMissingS3AccessKeyID     = errors.New("SNAPSHOT_S3_ACCESS_KEY_ID is required")
	ErrMissingS3SecretKey       = errors.New("SNAPSHOT_S3_SECRET_ACCESS_KEY is required")
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
	ErrInvalidCacheTTL          = errors.New("SNAPSHOT_CACHE_TTL_SECONDS must be positive")
	ErrInvalidSearchRateLimit   = errors.New("SEARCH_RATE_LIMIT_PER_MINUTE must not be negative")
	ErrInvalidTracingExporter   = errors.New("TRACING_EXPORTER must be otlp-http or otlp-grpc")
	ErrInvalidTracingSampleRate = errors.New("TRACING_SAMPLE_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort                 = 8080
	DefaultEnv                  = "development"
	DefaultSnapshotCacheTTLSecs = 30
	DefaultSearchRateLimit      = 60
	DefaultMetricsEnabled       = true
	DefaultTracingExporter      = "otlp-http"
	DefaultTracingSampleRate    = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try LEADERBOARD_PORT first, then PORT for platform compatibility
	port, err := getEnvIntOrDefaultMulti([]string{"LEADERBOARD_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	cacheTTL, err := getEnvIntOrDefault("SNAPSHOT_CACHE_TTL_SECONDS", k.Int("snapshot_cache_ttl_seconds"), DefaultSnapshotCacheTTLSecs)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	searchLimit, err := getEnvIntOrDefault("SEARCH_RATE_LIMIT_PER_MINUTE", k.Int("search_rate_limit_per_minute"), DefaultSearchRateLimit)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	sampleRate, err := getEnvFloatOrDefault("TRACING_SAMPLE_RATE", k.Float64("tracing_sample_rate"), DefaultTracingSampleRate)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	cfg := &Config{
		Port:                     port,
		Env:                      getEnvOrDefaultMulti([]string{"LEADERBOARD_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		SnapshotFile:             getEnvOrKoanf("SNAPSHOT_FILE", k, "snapshot_file"),
		DatabaseURL:              getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		S3Bucket:                 getEnvOrKoanf("SNAPSHOT_S3_BUCKET", k, "snapshot_s3_bucket"),
		S3Key:                    getEnvOrKoanf("SNAPSHOT_S3_KEY", k, "snapshot_s3_key"),
		S3Endpoint:               getEnvOrKoanf("SNAPSHOT_S3_ENDPOINT", k, "snapshot_s3_endpoint"),
		S3AccessKeyID:            getEnvOrKoanf("SNAPSHOT_S3_ACCESS_KEY_ID", k, "snapshot_s3_access_key_id"),
		S3SecretAccessKey:        getEnvOrKoanf("SNAPSHOT_S3_SECRET_ACCESS_KEY", k, "snapshot_s3_secret_access_key"),
		RedisURL:                 getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		SnapshotCacheTTLSecs:     cacheTTL,
		RankingCalibrationPath:   getEnvOrKoanf("RANKING_CALIBRATION_PATH", k, "ranking_calibration_path"),
		CORSAllowedOrigins:       getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
		SearchRateLimitPerMinute: searchLimit,
		MetricsEnabled:           getEnvBoolOrDefault("METRICS_ENABLED", k, "metrics_enabled", DefaultMetricsEnabled),
		TracingEnabled:           getEnvBoolOrDefault("TRACING_ENABLED", k, "tracing_enabled", false),
		TracingExporter:          getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), DefaultTracingExporter),
		OTLPEndpoint:             getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		TracingSampleRate:        sampleRate,
		TracingInsecure:          getEnvBoolOrDefault("TRACING_INSECURE", k, "tracing_insecure", false),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvListOrKoanf reads a comma-separated env var, falling back to a koanf list.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	raw := os.Getenv(envKey)
	if raw == "" {
		return k.Strings(koanfKey)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvBoolOrDefault reads a boolean flag. Unrecognised env values leave the
// file or default value in place.
func getEnvBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	v := defaultVal
	if k.Exists(koanfKey) {
		v = k.Bool(koanfKey)
	}
	switch strings.ToLower(os.Getenv(envKey)) {
	case "true", "1", "yes", "on":
		v = true
	case "false", "0", "no", "off":
		v = false
	}
	return v
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	return getEnvIntOrDefaultMulti([]string{envKey}, koanfVal, defaultVal)
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				if key == "PORT" || strings.HasSuffix(key, "_PORT") {
					return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
				}
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that the configuration can produce a snapshot source and
// sane observability settings. Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.SnapshotFile == "" && c.DatabaseURL == "" && c.S3Bucket == "" {
		errs = append(errs, ErrMissingSnapshotSource)
	}

	// S3 fields are only checked when a bucket is configured.
	if c.S3Bucket != "" {
		if c.S3Key == "" {
			errs = append(errs, ErrMissingS3Key)
		}
		if c.S3AccessKeyID == "" {
			errs = append(errs, ErrMissingS3AccessKeyID)
		}
		if c.S3SecretAccessKey == "" {
			errs = append(errs, ErrMissingS3SecretKey)
		}
	}

	if c.SnapshotCacheTTLSecs <= 0 {
		errs = append(errs, ErrInvalidCacheTTL)
	}

	if c.SearchRateLimitPerMinute < 0 {
		errs = append(errs, ErrInvalidSearchRateLimit)
	}

	if c.TracingEnabled {
		if c.TracingExporter != "otlp-http" && c.TracingExporter != "otlp-grpc" {
			errs = append(errs, ErrInvalidTracingExporter)
		}
		if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
			errs = append(errs, ErrInvalidTracingSampleRate)
		}
	}

	return errs
}

// SnapshotCacheTTL returns the Redis cache TTL as a duration.
func (c *Config) SnapshotCacheTTL() time.Duration {
	return time.Duration(c.SnapshotCacheTTLSecs) * time.Second
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                          strconv.Itoa(c.Port),
		"env":                           c.Env,
		"snapshot_file":                 c.SnapshotFile,
		"database_url":                  maskURL(c.DatabaseURL),
		"snapshot_s3_bucket":            c.S3Bucket,
		"snapshot_s3_key":               c.S3Key,
		"snapshot_s3_endpoint":          c.S3Endpoint,
		"snapshot_s3_access_key_id":     maskSecret(c.S3AccessKeyID),
		"snapshot_s3_secret_access_key": maskSecret(c.S3SecretAccessKey),
		"redis_url":                     maskURL(c.RedisURL),
		"snapshot_cache_ttl_seconds":    strconv.Itoa(c.SnapshotCacheTTLSecs),
		"ranking_calibration_path":      c.RankingCalibrationPath,
		"cors_allowed_origins":          strings.Join(c.CORSAllowedOrigins, ","),
		"search_rate_limit_per_minute":  strconv.Itoa(c.SearchRateLimitPerMinute),
		"metrics_enabled":               strconv.FormatBool(c.MetricsEnabled),
		"tracing_enabled":               strconv.FormatBool(c.TracingEnabled),
		"tracing_exporter":              c.TracingExporter,
		"otlp_endpoint":                 c.OTLPEndpoint,
		"tracing_sample_rate":           strconv.FormatFloat(c.TracingSampleRate, 'f', -1, 64),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskURL masks the password in a connection URL such as postgres:// or redis://.
func maskURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
