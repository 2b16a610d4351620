package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// developmentJWTSecret is only used when no secret is configured outside production
	developmentJWTSecret = "development-only-jwt-secret-change-me-0001"
	minJWTSecretLength   = 32
)

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	TrustProxy      bool          `mapstructure:"trust_proxy"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds token and login settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
	Issuer    string        `mapstructure:"issuer"`
	// DemoMode accepts DemoPasswords for any known account. Never enable in production.
	DemoMode      bool     `mapstructure:"demo_mode"`
	DemoPasswords []string `mapstructure:"demo_passwords"`
	BcryptCost    int      `mapstructure:"bcrypt_cost"`
}

// S3Config controls mirroring of uploaded evidence to S3
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Driver       string `mapstructure:"driver"` // memory | sqlite
	SQLitePath   string `mapstructure:"sqlite_path"`
	SeedFixtures bool   `mapstructure:"seed_fixtures"`
}

// UploadConfig limits evidence uploads
type UploadConfig struct {
	Path         string   `mapstructure:"path"`
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	S3           S3Config `mapstructure:"s3"`
}

// LimitConfig is a fixed-window limit
type LimitConfig struct {
	WindowMS    int64 `mapstructure:"window_ms"`
	MaxRequests int   `mapstructure:"max_requests"`
}

// Window returns the window as a duration
func (l LimitConfig) Window() time.Duration {
	return time.Duration(l.WindowMS) * time.Millisecond
}

// RateLimitConfig holds inbound request limits
type RateLimitConfig struct {
	Enabled     bool        `mapstructure:"enabled"`
	WindowMS    int64       `mapstructure:"window_ms"`
	MaxRequests int         `mapstructure:"max_requests"`
	Login       LimitConfig `mapstructure:"login"`
	Upload      struct {
		PerHour int `mapstructure:"per_hour"`
		Burst   int `mapstructure:"burst"`
	} `mapstructure:"upload"`
}

// Window returns the API window as a duration
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}

// RedisConfig enables shared counters and caching
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// FeatureFlags switch optional capabilities on or off
type FeatureFlags struct {
	AIAnalysis         bool `mapstructure:"ai_analysis"`
	AutoClassification bool `mapstructure:"auto_classification"`
	ThreatIntelligence bool `mapstructure:"threat_intelligence"`
}

// ModelConfig configures one LLM provider
type ModelConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	URL         string  `mapstructure:"url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// AIConfig configures the LLM providers
type AIConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	StoryMaxTokens   int           `mapstructure:"story_max_tokens"` // 0 keeps the provider's max_tokens
	Google           ModelConfig   `mapstructure:"google"`
	OpenAI           ModelConfig   `mapstructure:"openai"`
	Anthropic        ModelConfig   `mapstructure:"anthropic"`
}

// ProviderConfig configures one threat intelligence provider
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	URL    string `mapstructure:"url"`
}

// ThreatIntelConfig configures the reputation providers
type ThreatIntelConfig struct {
	Timeout    time.Duration  `mapstructure:"timeout"`
	CacheTTL   time.Duration  `mapstructure:"cache_ttl"`
	CacheSize  int            `mapstructure:"cache_size"`
	VirusTotal ProviderConfig `mapstructure:"virustotal"`
	AbuseIPDB  ProviderConfig `mapstructure:"abuseipdb"`
	GreyNoise  ProviderConfig `mapstructure:"greynoise"`
}

// SecretsConfig selects where secrets are loaded from
type SecretsConfig struct {
	Provider string `mapstructure:"provider"` // env | vault | aws
	Vault    struct {
		Address string `mapstructure:"address"`
		Token   string `mapstructure:"token"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"vault"`
	AWS struct {
		Region    string `mapstructure:"region"`
		SecretID  string `mapstructure:"secret_id"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"aws"`
}

// Config holds all configuration for the forensics service
type Config struct {
	Environment string            `mapstructure:"environment"`
	LogLevel    string            `mapstructure:"log_level"`
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Upload      UploadConfig      `mapstructure:"upload"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Features    FeatureFlags      `mapstructure:"features"`
	AI          AIConfig          `mapstructure:"ai"`
	ThreatIntel ThreatIntelConfig `mapstructure:"threat_intel"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry", "7d")
	v.SetDefault("auth.issuer", "forensics")
	v.SetDefault("auth.demo_mode", false)
	v.SetDefault("auth.demo_passwords", []string{"demo123", "123456"})
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "./data/forensics.db")
	v.SetDefault("storage.seed_fixtures", true)

	v.SetDefault("upload.path", "./uploads")
	v.SetDefault("upload.max_size", 104857600) // 100MB
	v.SetDefault("upload.allowed_types", []string{"log", "txt", "json", "csv", "xml", "pcap", "cap", "evtx", "etl", "zip"})
	v.SetDefault("upload.s3.enabled", false)
	v.SetDefault("upload.s3.prefix", "evidence/")
	v.SetDefault("upload.s3.region", "us-east-1")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.window_ms", 900000) // 15 minutes
	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.login.window_ms", 900000)
	v.SetDefault("rate_limit.login.max_requests", 10)
	v.SetDefault("rate_limit.upload.per_hour", 50)
	v.SetDefault("rate_limit.upload.burst", 50)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("features.ai_analysis", false)
	v.SetDefault("features.auto_classification", false)
	v.SetDefault("features.threat_intelligence", false)

	v.SetDefault("ai.timeout", 120*time.Second)
	v.SetDefault("ai.batch_concurrency", 0)
	v.SetDefault("ai.story_max_tokens", 0)
	v.SetDefault("ai.google.url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.google.model", "gemini-pro")
	v.SetDefault("ai.google.max_tokens", 2048)
	v.SetDefault("ai.google.temperature", 0.7)
	v.SetDefault("ai.openai.url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4")
	v.SetDefault("ai.openai.max_tokens", 2000)
	v.SetDefault("ai.openai.temperature", 0.7)
	v.SetDefault("ai.anthropic.url", "https://api.anthropic.com/v1")
	v.SetDefault("ai.anthropic.model", "claude-3-sonnet-20240229")
	v.SetDefault("ai.anthropic.max_tokens", 4000)
	v.SetDefault("ai.anthropic.temperature", 0.7)

	v.SetDefault("threat_intel.timeout", 15*time.Second)
	v.SetDefault("threat_intel.cache_ttl", 15*time.Minute)
	v.SetDefault("threat_intel.cache_size", 1024)
	v.SetDefault("threat_intel.virustotal.url", "https://www.virustotal.com/api/v3")
	v.SetDefault("threat_intel.abuseipdb.url", "https://api.abuseipdb.com/api/v2")
	v.SetDefault("threat_intel.greynoise.url", "https://api.greynoise.io/v3")

	v.SetDefault("secrets.provider", "env")
	v.SetDefault("secrets.vault.path", "secret/forensics")
	v.SetDefault("secrets.aws.region", "us-east-1")
	v.SetDefault("secrets.aws.secret_id", "forensics/secrets")
}

// legacyEnv maps unprefixed variable names used by existing deployments
var legacyEnv = map[string]string{
	"environment":                     "NODE_ENV",
	"server.port":                     "PORT",
	"server.host":                     "HOST",
	"server.cors_origins":             "CORS_ORIGIN",
	"auth.jwt_secret":                 "JWT_SECRET",
	"auth.jwt_expiry":                 "JWT_EXPIRES_IN",
	"auth.demo_mode":                  "DEMO_MODE",
	"upload.path":                     "UPLOAD_PATH",
	"upload.max_size":                 "MAX_FILE_SIZE",
	"upload.allowed_types":            "ALLOWED_FILE_TYPES",
	"rate_limit.enabled":              "RATE_LIMIT_ENABLED",
	"rate_limit.window_ms":            "RATE_LIMIT_WINDOW_MS",
	"rate_limit.max_requests":         "RATE_LIMIT_MAX_REQUESTS",
	"features.ai_analysis":            "FEATURE_AI_ANALYSIS",
	"features.auto_classification":    "FEATURE_AUTO_CLASSIFICATION",
	"features.threat_intelligence":    "FEATURE_THREAT_INTELLIGENCE",
	"ai.google.api_key":               "GOOGLE_AI_API_KEY",
	"ai.google.model":                 "GOOGLE_AI_MODEL",
	"ai.openai.api_key":               "OPENAI_API_KEY",
	"ai.openai.model":                 "OPENAI_MODEL",
	"ai.openai.max_tokens":            "OPENAI_MAX_TOKENS",
	"ai.openai.temperature":           "OPENAI_TEMPERATURE",
	"ai.anthropic.api_key":            "ANTHROPIC_API_KEY",
	"ai.anthropic.model":              "ANTHROPIC_MODEL",
	"ai.anthropic.max_tokens":         "ANTHROPIC_MAX_TOKENS",
	"threat_intel.virustotal.api_key": "VIRUSTOTAL_API_KEY",
	"threat_intel.virustotal.url":     "VIRUSTOTAL_API_URL",
	"threat_intel.abuseipdb.api_key":  "ABUSEIPDB_API_KEY",
	"threat_intel.abuseipdb.url":      "ABUSEIPDB_API_URL",
	"threat_intel.greynoise.api_key":  "GREYNOISE_API_KEY",
	"threat_intel.greynoise.url":      "GREYNOISE_API_URL",
}

func loadFromEnv(v *viper.Viper) {
	v.SetEnvPrefix("FORENSICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Prefixed names win over the legacy ones
	for key, legacy := range legacyEnv {
		prefixed := "FORENSICS_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// stringToDurationHook accepts Go durations plus a day suffix ("7d")
func stringToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return ParseDuration(data.(string))
	}
}

// ParseDuration parses a duration that may use a "d" (day) suffix
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// LoadConfig reads config.yaml (optional), environment variables and secrets
func LoadConfig() (*Config, error) {
	return Load(viper.New())
}

// Load builds a Config from the given viper instance
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	loadFromEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Secrets.Provider != "" && cfg.Secrets.Provider != "env" {
		sm, err := NewSecretManager(&cfg)
		if err != nil {
			return nil, err
		}
		if err := ApplySecrets(&cfg, sm); err != nil {
			return nil, err
		}
	}

	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		cfg.Auth.JWTSecret = developmentJWTSecret
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if len(cfg.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters", minJWTSecretLength)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == developmentJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be set in production")
	}
	if cfg.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("auth.jwt_expiry must be positive")
	}
	if cfg.IsProduction() && cfg.Auth.DemoMode {
		return fmt.Errorf("auth.demo_mode cannot be enabled in production")
	}
	if cfg.RateLimit.WindowMS <= 0 || cfg.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.window_ms and rate_limit.max_requests must be positive")
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload.allowed_types must not be empty")
	}
	if cfg.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive")
	}
	switch cfg.Storage.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be memory or sqlite, got %q", cfg.Storage.Driver)
	}
	if cfg.Upload.S3.Enabled && cfg.Upload.S3.Bucket == "" {
		return fmt.Errorf("upload.s3.bucket is required when S3 mirroring is enabled")
	}
	return nil
}

// Warnings lists settings that are legal but probably not what the operator wants
func (c *Config) Warnings() []string {
	var warnings []string
	anyAIKey := c.AI.Google.APIKey != "" || c.AI.OpenAI.APIKey != "" || c.AI.Anthropic.APIKey != ""
	if (c.Features.AIAnalysis || c.Features.AutoClassification) && !anyAIKey {
		warnings = append(warnings, "AI features are enabled but no AI provider API key is configured")
	}
	anyIntelKey := c.ThreatIntel.VirusTotal.APIKey != "" || c.ThreatIntel.AbuseIPDB.APIKey != "" || c.ThreatIntel.GreyNoise.APIKey != ""
	if c.Features.ThreatIntelligence && !anyIntelKey {
		warnings = append(warnings, "threat intelligence is enabled but no provider API key is configured")
	}
	if c.Auth.DemoMode {
		warnings = append(warnings, "demo mode is enabled: demo passwords are accepted for every account")
	}
	return warnings
}
