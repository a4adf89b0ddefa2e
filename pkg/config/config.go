package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FuelPilot/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers             []string `yaml:"brokers"`
		QuoteTopic          string   `yaml:"quote_topic"`
		RecommendationTopic string   `yaml:"recommendation_topic"`
		RequiredAcks        int      `yaml:"required_acks"`
		Compression         string   `yaml:"compression"`
		Producer            struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	QuoteFeed struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Products       []string      `yaml:"products"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"quote_feed"`
	Model struct {
		Type       string        `yaml:"type"` // coeffs | http
		CoeffsPath string        `yaml:"coeffs_path"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    int           `yaml:"retries"`
	} `yaml:"model"`
	Pricing struct {
		Products       []string                `yaml:"products"`
		CandidateCount int                     `yaml:"candidate_count"`
		Workers        int                     `yaml:"workers"`
		QuoteWindow    time.Duration           `yaml:"quote_window"`
		CacheTTL       time.Duration           `yaml:"cache_ttl"`
		HistoryCSV     string                  `yaml:"history_csv"`
		Guardrails     *models.GuardrailConfig `yaml:"guardrails"`
	} `yaml:"pricing"`
	Scheduler struct {
		Enabled  bool   `yaml:"enabled"`
		RunAt    string `yaml:"run_at"` // HH:MM, local to Location
		Location string `yaml:"location"`
	} `yaml:"scheduler"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_QUOTE_TOPIC"); v != "" {
		c.Kafka.QuoteTopic = v
	}
	if v := os.Getenv("PRODUCTS"); v != "" {
		c.Pricing.Products = strings.Split(v, ",")
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("QUOTE_FEED_API_KEY"); v != "" {
		c.QuoteFeed.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Pricing.Products) == 0 {
		return fmt.Errorf("pricing.products cannot be empty")
	}
	switch c.Model.Type {
	case "coeffs":
		if c.Model.CoeffsPath == "" {
			return fmt.Errorf("model.coeffs_path is required for coeffs model")
		}
	case "http":
		if c.Model.ServiceURL == "" {
			return fmt.Errorf("model.service_url is required for http model")
		}
	default:
		return fmt.Errorf("model.type must be 'coeffs' or 'http', got '%s'", c.Model.Type)
	}
	if c.Scheduler.Enabled {
		if _, err := time.Parse("15:04", c.Scheduler.RunAt); err != nil {
			return fmt.Errorf("scheduler.run_at must be HH:MM: %w", err)
		}
	}
	return nil
}
