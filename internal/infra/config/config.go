package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIKeyEnv is the process environment variable holding the Ark API key.
const APIKeyEnv = "ARK_API_KEY"

// DotEnvFile is the optional dotenv file consulted when APIKeyEnv is unset
// in the process environment.
const DotEnvFile = ".env"

// ErrMissingAPIKey is returned by Load when APIKeyEnv is unset.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " not set in environment")

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Ark        ArkConfig        `mapstructure:"ark"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	// Connection pool settings
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	// Timeout settings
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// ArkConfig holds upstream Ark platform configuration.
type ArkConfig struct {
	// APIKey is never read from the config file; see APIKeyEnv.
	APIKey         string        `mapstructure:"-"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SelfCheck      bool          `mapstructure:"self_check"`

	Chat  ArkChatConfig  `mapstructure:"chat"`
	Image ArkImageConfig `mapstructure:"image"`
	Video ArkVideoConfig `mapstructure:"video"`
}

// ArkChatConfig holds chat completion settings.
type ArkChatConfig struct {
	Model string `mapstructure:"model"`
}

// ArkImageConfig holds image generation settings.
type ArkImageConfig struct {
	Model          string `mapstructure:"model"`
	Size           string `mapstructure:"size"`
	ResponseFormat string `mapstructure:"response_format"`
	Watermark      bool   `mapstructure:"watermark"`
}

// ArkVideoConfig holds video task submission and polling settings.
type ArkVideoConfig struct {
	Model             string        `mapstructure:"model"`
	TaskPath          string        `mapstructure:"task_path"`
	PromptSuffix      string        `mapstructure:"prompt_suffix"`
	ReferenceImageURL string        `mapstructure:"reference_image_url"`
	CallTimeout       time.Duration `mapstructure:"call_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout"`
	// MaxWait bounds wall-clock polling time, slow status calls included.
	MaxWait time.Duration `mapstructure:"max_wait"`
}

// TaskEndpoint returns the absolute URL of the content generation task collection.
func (c *ArkConfig) TaskEndpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.Video.TaskPath, "/")
}

// CORSConfig holds browser origin configuration.
type CORSConfig struct {
	AllowOrigins     []string      `mapstructure:"allow_origins"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/arkgate")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("ARKGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Ark.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	if cfg.Ark.APIKey == "" {
		cfg.Ark.APIKey = dotEnvValue(DotEnvFile, APIKeyEnv)
	}
	if cfg.Ark.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// dotEnvValue reads key from the dotenv file at path. A missing or
// unreadable file yields "".
func dotEnvValue(path, key string) string {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return strings.TrimSpace(v.GetString(key))
}

// Validate checks values that would otherwise break the poll loop or routing.
func (c *Config) Validate() error {
	if c.Ark.BaseURL == "" {
		return errors.New("ark.base_url is required")
	}
	if c.Ark.Video.PollInterval <= 0 {
		return fmt.Errorf("ark.video.poll_interval must be positive, got %s", c.Ark.Video.PollInterval)
	}
	if c.Ark.Video.PollTimeout < c.Ark.Video.PollInterval {
		return fmt.Errorf("ark.video.poll_timeout (%s) must not be shorter than poll_interval (%s)",
			c.Ark.Video.PollTimeout, c.Ark.Video.PollInterval)
	}
	if c.Ark.Video.MaxWait > 0 && c.Ark.Video.MaxWait < c.Ark.Video.PollTimeout {
		return fmt.Errorf("ark.video.max_wait (%s) must not be shorter than poll_timeout (%s)",
			c.Ark.Video.MaxWait, c.Ark.Video.PollTimeout)
	}
	// The response must be written before the server cuts the connection.
	if budget := c.Ark.Video.CallTimeout + c.Ark.Video.MaxWait; c.Server.WriteTimeout > 0 && c.Ark.Video.MaxWait > 0 &&
		c.Server.WriteTimeout <= budget {
		return fmt.Errorf("server.write_timeout (%s) must exceed ark.video.call_timeout + max_wait (%s)",
			c.Server.WriteTimeout, budget)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults; write timeout covers submission plus max_wait.
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 0)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 10*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 60*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Ark defaults
	v.SetDefault("ark.base_url", "https://ark.ap-southeast.bytepluses.com/api/v3")
	v.SetDefault("ark.request_timeout", 30*time.Minute)
	v.SetDefault("ark.self_check", true)
	v.SetDefault("ark.chat.model", "seed-1-6-250615")
	v.SetDefault("ark.image.model", "seedream-4-0-250828")
	v.SetDefault("ark.image.size", "2K")
	v.SetDefault("ark.image.response_format", "url")
	v.SetDefault("ark.image.watermark", true)
	v.SetDefault("ark.video.model", "seedance-1-0-lite-i2v-250428")
	v.SetDefault("ark.video.task_path", "/contents/generations/tasks")
	v.SetDefault("ark.video.prompt_suffix", " --resolution 720p --duration 5 --camerafixed false")
	v.SetDefault("ark.video.reference_image_url", "https://ark-doc.tos-ap-southeast-1.bytepluses.com/see_i2v.jpeg")
	v.SetDefault("ark.video.call_timeout", 60*time.Second)
	v.SetDefault("ark.video.poll_interval", 3*time.Second)
	v.SetDefault("ark.video.poll_timeout", 60*time.Second)
	v.SetDefault("ark.video.max_wait", 90*time.Second)

	// CORS defaults
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 12*time.Hour)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "arkgate")
	v.SetDefault("metrics.path", "/metrics")
}
