package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DBURL        string
	CacheEnabled bool
	CacheBackend string
	CacheTTL     time.Duration

	FacetWorkers int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	SportsFeedBaseURL               string
	SportsFeedAPIKey                string
	SportsFeedTimeout               time.Duration
	SportsFeedMaxRetries            int
	SportsFeedCircuitEnabled        bool
	SportsFeedCircuitFailureCount   int
	SportsFeedCircuitOpenTimeout    time.Duration
	SportsFeedCircuitHalfOpenMaxReq int

	LeagueAPIBaseURL string
	LeagueAPITimeout time.Duration

	BroadcastEnabled bool
	BroadcastBaseURL string
	BroadcastTimeout time.Duration
}

const (
	cacheBackendMemory   = "memory"
	cacheBackendPostgres = "postgres"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheBackend := strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", cacheBackendMemory)))
	if cacheBackend != cacheBackendMemory && cacheBackend != cacheBackendPostgres {
		return Config{}, fmt.Errorf("CACHE_BACKEND must be %q or %q", cacheBackendMemory, cacheBackendPostgres)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if cacheBackend == cacheBackendPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when CACHE_BACKEND=postgres")
	}

	facetWorkers, err := getEnvAsInt("FACET_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse FACET_WORKERS: %w", err)
	}
	if facetWorkers < 1 {
		return Config{}, fmt.Errorf("FACET_WORKERS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	sportsFeedTimeout, err := time.ParseDuration(getEnv("SPORTSFEED_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_TIMEOUT: %w", err)
	}
	if sportsFeedTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSFEED_TIMEOUT must be > 0")
	}
	sportsFeedMaxRetries, err := getEnvAsInt("SPORTSFEED_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_MAX_RETRIES: %w", err)
	}
	if sportsFeedMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTSFEED_MAX_RETRIES must be >= 0")
	}
	sportsFeedCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTSFEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_CIRCUIT_ENABLED: %w", err)
	}
	sportsFeedCircuitFailureCount, err := getEnvAsInt("SPORTSFEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sportsFeedCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SPORTSFEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sportsFeedCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTSFEED_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sportsFeedCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSFEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sportsFeedCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTSFEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSFEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sportsFeedCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SPORTSFEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	leagueAPITimeout, err := time.ParseDuration(getEnv("LEAGUEAPI_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUEAPI_TIMEOUT: %w", err)
	}
	if leagueAPITimeout <= 0 {
		return Config{}, fmt.Errorf("LEAGUEAPI_TIMEOUT must be > 0")
	}

	broadcastEnabled, err := strconv.ParseBool(getEnv("BROADCAST_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_ENABLED: %w", err)
	}
	broadcastTimeout, err := time.ParseDuration(getEnv("BROADCAST_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_TIMEOUT: %w", err)
	}
	if broadcastTimeout <= 0 {
		return Config{}, fmt.Errorf("BROADCAST_TIMEOUT must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "scorecenter-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DBURL:        dbURL,
		CacheEnabled: cacheEnabled,
		CacheBackend: cacheBackend,
		CacheTTL:     cacheTTL,

		FacetWorkers: facetWorkers,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		SportsFeedBaseURL:               strings.TrimSpace(getEnv("SPORTSFEED_BASE_URL", "")),
		SportsFeedAPIKey:                strings.TrimSpace(getEnv("SPORTSFEED_API_KEY", "")),
		SportsFeedTimeout:               sportsFeedTimeout,
		SportsFeedMaxRetries:            sportsFeedMaxRetries,
		SportsFeedCircuitEnabled:        sportsFeedCircuitEnabled,
		SportsFeedCircuitFailureCount:   sportsFeedCircuitFailureCount,
		SportsFeedCircuitOpenTimeout:    sportsFeedCircuitOpenTimeout,
		SportsFeedCircuitHalfOpenMaxReq: sportsFeedCircuitHalfOpenMaxReq,

		LeagueAPIBaseURL: strings.TrimSpace(getEnv("LEAGUEAPI_BASE_URL", "")),
		LeagueAPITimeout: leagueAPITimeout,

		BroadcastEnabled: broadcastEnabled,
		BroadcastBaseURL: strings.TrimSpace(getEnv("BROADCAST_BASE_URL", "")),
		BroadcastTimeout: broadcastTimeout,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func (c Config) CachePostgresEnabled() bool {
	return c.CacheEnabled && c.CacheBackend == cacheBackendPostgres
}

func parseAppEnv(v string) (string, error) {
	env := strings.ToLower(strings.TrimSpace(v))
	switch env {
	case EnvDev, EnvStaging, EnvProd:
		return env, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q, expected dev, staging or prod", v)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
