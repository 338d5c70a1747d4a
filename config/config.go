package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/productmatch/backend/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured; empty trusts none
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// MatchingConfig holds the product matching configuration
type MatchingConfig struct {
	DataType      string            `mapstructure:"data_type"`
	Token         string            `mapstructure:"token"`
	ForcedAnd     bool              `mapstructure:"forced_and"`
	Query         QuerySettings     `mapstructure:"query"`
	Mapping       MappingConfig     `mapstructure:"mapping"`
	UnwantedData  []string          `mapstructure:"unwanted_data"`
	FlatFields    []string          `mapstructure:"flat_fields"`
	ForcedFields  []string          `mapstructure:"forced_fields"`
	CustomParsers map[string]string `mapstructure:"custom_parsers"`
}

// QuerySettings holds query construction settings
type QuerySettings struct {
	FieldsMapping       map[string]string `mapstructure:"fields_mapping"`
	FieldsPreProcessing map[string]string `mapstructure:"fields_pre_processing"`
	Strategy            string            `mapstructure:"strategy"`
	NumRecords          int               `mapstructure:"num_records"`
}

// MappingConfig holds result mapping settings
type MappingConfig struct {
	Key string `mapstructure:"key"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration like Load, reading the given config file instead of searching for one.
// An empty path falls back to the default search paths.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/productmatch/")
	}

	// Environment variable settings
	v.SetEnvPrefix("PRODUCTMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional unless a path was given explicitly
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads PRODUCTMATCH_ENV_FILE (default .env) into the environment when it exists.
// Variables already set in the environment win.
func loadEnvFile() error {
	envFile := os.Getenv("PRODUCTMATCH_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", envFile, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := domain.DefaultQueryConfig()

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.trusted_proxies", []string{})

	// Matching defaults
	v.SetDefault("matching.data_type", defaults.DataType)
	v.SetDefault("matching.token", "")
	v.SetDefault("matching.forced_and", defaults.ForcedAnd)
	v.SetDefault("matching.query.fields_mapping", stringMap(defaults.FieldsMapping))
	v.SetDefault("matching.query.fields_pre_processing", stringMap(defaults.FieldsPreProcessing))
	v.SetDefault("matching.query.strategy", string(defaults.Strategy))
	v.SetDefault("matching.query.num_records", defaults.NumRecords)
	v.SetDefault("matching.mapping.key", defaults.MappingKey)
	v.SetDefault("matching.unwanted_data", []string{})
	v.SetDefault("matching.flat_fields", []string{})
	v.SetDefault("matching.forced_fields", []string{})
	v.SetDefault("matching.custom_parsers", map[string]string{})

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// validate validates the configuration.
// Matching rules are validated in depth when the query builder is created.
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	for _, proxy := range config.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy %q: must be an IP or CIDR", proxy)
		}
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Log.Format)
	}

	for key := range config.Matching.Query.FieldsMapping {
		if _, ok := domain.ParseField(key); !ok {
			return fmt.Errorf("unknown field in matching.query.fields_mapping: %s", key)
		}
	}

	for key := range config.Matching.Query.FieldsPreProcessing {
		if _, ok := domain.ParseField(key); !ok {
			return fmt.Errorf("unknown field in matching.query.fields_pre_processing: %s", key)
		}
	}

	return nil
}

// NoTransform in matching.query.fields_pre_processing removes the default rule of a field
const NoTransform = "none"

// ToQueryConfig converts the matching section into the domain configuration.
// Field keys are resolved case-insensitively since viper lowercases map keys.
// File maps are merged over the defaults, so an empty output name unmaps a field
// and NoTransform drops its pre-processing rule.
func (c *Config) ToQueryConfig() domain.QueryConfig {
	m := c.Matching

	mapping := make(map[domain.Field]string, len(m.Query.FieldsMapping))
	for key, name := range m.Query.FieldsMapping {
		if name == "" {
			continue
		}
		field, _ := domain.ParseField(key)
		mapping[field] = name
	}

	rules := make(map[domain.Field]domain.TransformName, len(m.Query.FieldsPreProcessing))
	for key, name := range m.Query.FieldsPreProcessing {
		if name == "" || name == NoTransform {
			continue
		}
		field, _ := domain.ParseField(key)
		rules[field] = domain.TransformName(name)
	}

	parsers := make(map[string]string, len(m.CustomParsers))
	for field, name := range m.CustomParsers {
		parsers[field] = name
	}

	return domain.QueryConfig{
		DataType:            m.DataType,
		Token:               m.Token,
		ForcedAnd:           m.ForcedAnd,
		FieldsMapping:       mapping,
		FieldsPreProcessing: rules,
		Strategy:            domain.Strategy(m.Query.Strategy),
		NumRecords:          m.Query.NumRecords,
		MappingKey:          m.Mapping.Key,
		UnwantedData:        append([]string{}, m.UnwantedData...),
		FlatFields:          append([]string{}, m.FlatFields...),
		ForcedFields:        append([]string{}, m.ForcedFields...),
		CustomParsers:       parsers,
	}
}

func stringMap[K ~string, V ~string](in map[K]V) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[string(k)] = string(v)
	}
	return out
}
