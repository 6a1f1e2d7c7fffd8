package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	App         AppConfig         `yaml:"app"`
	MySQL       MySQLConfig       `yaml:"mysql"`
	Redis       RedisConfig       `yaml:"redis"`
	BloomFilter BloomFilterConfig `yaml:"bloom_filter"`
	Snowflake   SnowflakeConfig   `yaml:"snowflake"`
	ShortLink   ShortLinkConfig   `yaml:"short_link"`
	Twilio      TwilioConfig      `yaml:"twilio"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

// AppConfig represents application-wide settings
type AppConfig struct {
	// BaseURL is the externally reachable URL short links are built from,
	// e.g. https://reviews.example.com
	BaseURL string `yaml:"base_url"`
	// BusinessWhatsAppNumber is the destination chat for review redirects.
	// When empty the deep link lets the user pick the chat target.
	BusinessWhatsAppNumber string `yaml:"business_whatsapp_number"`
	// ShopName is the fallback business name used in outbound message templates.
	ShopName string `yaml:"shop_name"`
}

// MySQLConfig represents MySQL configuration
type MySQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// BloomFilterConfig represents Bloom filter configuration
type BloomFilterConfig struct {
	Capacity          uint    `yaml:"capacity"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

// SnowflakeConfig represents Snowflake ID generator configuration
type SnowflakeConfig struct {
	DatacenterID int64 `yaml:"datacenter_id"`
	WorkerID     int64 `yaml:"worker_id"`
}

// ShortLinkConfig represents short-link generation configuration
type ShortLinkConfig struct {
	CodeLength         int `yaml:"code_length"`
	MaxAttempts        int `yaml:"max_attempts"`
	DefaultExpiryHours int `yaml:"default_expiry_hours"`
}

// TwilioConfig represents Twilio messaging credentials
type TwilioConfig struct {
	AccountSID     string `yaml:"account_sid"`
	AuthToken      string `yaml:"auth_token"`
	SMSNumber      string `yaml:"sms_number"`
	WhatsAppNumber string `yaml:"whatsapp_number"`
}

// GeminiConfig represents the generative-text API configuration
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	Enabled   bool                     `yaml:"enabled"`
	Strategy  string                   `yaml:"strategy"`
	Global    RateLimitRule            `yaml:"global"`
	Endpoints map[string]RateLimitRule `yaml:"endpoints"`
}

// RateLimitRule represents a single limit/window pair
type RateLimitRule struct {
	Limit  int `yaml:"limit"`
	Window int `yaml:"window"` // seconds
}

// DSN returns MySQL data source name
func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.Username, m.Password, m.Host, m.Port, m.Database)
}

// Addr returns Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load loads configuration from file and applies environment overrides.
// Secrets (Twilio credentials, Gemini API key) are expected to come from
// the environment in production rather than the YAML file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("MYSQL_HOST"); host != "" {
		cfg.MySQL.Host = host
	}
	if pass := os.Getenv("MYSQL_PASSWORD"); pass != "" {
		cfg.MySQL.Password = pass
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Redis.Host = host
	}
	if url := os.Getenv("APP_URL"); url != "" {
		cfg.App.BaseURL = url
	}
	if num := os.Getenv("BUSINESS_WHATSAPP_NUMBER"); num != "" {
		cfg.App.BusinessWhatsAppNumber = num
	}
	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		cfg.Twilio.AccountSID = sid
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		cfg.Twilio.AuthToken = token
	}
	if num := os.Getenv("TWILIO_SMS_NUMBER"); num != "" {
		cfg.Twilio.SMSNumber = num
	}
	if num := os.Getenv("TWILIO_WHATSAPP_NUMBER"); num != "" {
		cfg.Twilio.WhatsAppNumber = num
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:8080"
	}
	if cfg.ShortLink.CodeLength == 0 {
		cfg.ShortLink.CodeLength = 6
	}
	if cfg.ShortLink.MaxAttempts == 0 {
		cfg.ShortLink.MaxAttempts = 5
	}
	if cfg.ShortLink.DefaultExpiryHours == 0 {
		cfg.ShortLink.DefaultExpiryHours = 168 // 7 days
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
}
