package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Slack     SlackConfig     `yaml:"slack" mapstructure:"slack"`
	CRM       CRMConfig       `yaml:"crm" mapstructure:"crm"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SlackConfig holds Slack Web API settings.
type SlackConfig struct {
	BotToken      string   `yaml:"bot_token" mapstructure:"bot_token"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	ChannelAllow  []string `yaml:"channel_allow" mapstructure:"channel_allow"`
	DMRecipientID string   `yaml:"dm_recipient_id" mapstructure:"dm_recipient_id"`
}

// CRMConfig selects and configures the CRM backend.
type CRMConfig struct {
	Provider   string           `yaml:"provider" mapstructure:"provider"` // "hubspot" or "salesforce"
	HubSpot    HubSpotConfig    `yaml:"hubspot" mapstructure:"hubspot"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	RateLimit  float64          `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
}

// HubSpotConfig holds HubSpot private-app token settings.
type HubSpotConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// AnthropicConfig holds Anthropic API settings for qualification calls.
type AnthropicConfig struct {
	Key              string `yaml:"key" mapstructure:"key"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	Model            string `yaml:"model" mapstructure:"model"`
	MaxTokens        int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	WebSearchMaxUses int    `yaml:"web_search_max_uses" mapstructure:"web_search_max_uses"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int    `yaml:"max_retries" mapstructure:"max_retries"`
	BreakerThreshold int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// Timeout returns the per-call AI timeout.
func (a AnthropicConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// PipelineConfig tunes the lead pipeline's windows, timeouts, and buffers.
type PipelineConfig struct {
	DedupWindowSecs int `yaml:"dedup_window_secs" mapstructure:"dedup_window_secs"`
	CRMTimeoutSecs  int `yaml:"crm_timeout_secs" mapstructure:"crm_timeout_secs"`
	ChatTimeoutSecs int `yaml:"chat_timeout_secs" mapstructure:"chat_timeout_secs"`
	LogCapacity     int `yaml:"log_capacity" mapstructure:"log_capacity"`
}

// DedupWindow returns the dedup window as a duration.
func (p PipelineConfig) DedupWindow() time.Duration {
	return time.Duration(p.DedupWindowSecs) * time.Second
}

// CRMTimeout returns the per-call CRM timeout.
func (p PipelineConfig) CRMTimeout() time.Duration {
	return time.Duration(p.CRMTimeoutSecs) * time.Second
}

// ChatTimeout returns the per-call chat API timeout.
func (p PipelineConfig) ChatTimeout() time.Duration {
	return time.Duration(p.ChatTimeoutSecs) * time.Second
}

// ScoringConfig points at an optional criteria file overriding the built-in
// weights and thresholds.
type ScoringConfig struct {
	CriteriaPath string `yaml:"criteria_path" mapstructure:"criteria_path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 5678)
	v.SetDefault("slack.base_url", "https://slack.com/api")
	v.SetDefault("crm.provider", "hubspot")
	v.SetDefault("crm.hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("crm.salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("crm.rate_limit", 5.0)
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2000)
	v.SetDefault("anthropic.web_search_max_uses", 6)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.max_retries", 2)
	v.SetDefault("anthropic.breaker_threshold", 5)
	v.SetDefault("anthropic.breaker_reset_secs", 60)
	v.SetDefault("pipeline.dedup_window_secs", 300)
	v.SetDefault("pipeline.crm_timeout_secs", 10)
	v.SetDefault("pipeline.chat_timeout_secs", 10)
	v.SetDefault("pipeline.log_capacity", 100)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that every credential the service needs at runtime is
// present. Missing credentials are fatal at startup, never at request time.
func (c *Config) Validate() error {
	var missing []string

	if c.Slack.BotToken == "" {
		missing = append(missing, "slack.bot_token")
	}
	if c.Anthropic.Key == "" {
		missing = append(missing, "anthropic.key")
	}

	switch c.CRM.Provider {
	case "hubspot":
		if c.CRM.HubSpot.Token == "" {
			missing = append(missing, "crm.hubspot.token")
		}
	case "salesforce":
		if c.CRM.Salesforce.ClientID == "" {
			missing = append(missing, "crm.salesforce.client_id")
		}
		if c.CRM.Salesforce.Username == "" {
			missing = append(missing, "crm.salesforce.username")
		}
		if c.CRM.Salesforce.KeyPath == "" {
			missing = append(missing, "crm.salesforce.key_path")
		}
	default:
		return eris.Errorf("config: unknown crm provider %q", c.CRM.Provider)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
