package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const DefaultPollInterval = 30 * time.Second

type Config struct {
	HTTPAddr string `validate:"required"`

	APIBaseURL string        `validate:"required,url"`
	APITimeout time.Duration `validate:"gt=0"`
	AdminToken string
	UserToken  string
	// PollInterval is not read from the environment.
	PollInterval time.Duration `validate:"gt=0"`

	MySQLDSN string

	RabbitMQURL             string
	RabbitExchange          string `validate:"required"`
	RabbitPublishPrefix     string `validate:"required"`
	RabbitQueue             string `validate:"required"`
	RabbitRefreshRoutingKey string `validate:"required"`
	RabbitConsumerTag       string

	SSEHeartbeat time.Duration `validate:"gt=0"`
	HistoryLimit int           `validate:"gte=0"`

	LogFile string

	OTELServiceName string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:                ":8080",
		APIBaseURL:              "http://localhost:3000/api",
		APITimeout:              10 * time.Second,
		PollInterval:            DefaultPollInterval,
		RabbitExchange:          "notifications",
		RabbitPublishPrefix:     "alert",
		RabbitQueue:             "notifysync.refresh",
		RabbitRefreshRoutingKey: "notifications.changed.*",
		RabbitConsumerTag:       "notifysync",
		SSEHeartbeat:            15 * time.Second,
		HistoryLimit:            20,
		LogFile:                 "logs/app.log",
		OTELServiceName:         "notifysync",
		OTLPInsecure:            true,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("API_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APITimeout = time.Duration(n) * time.Second
		}
	}
	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	cfg.UserToken = os.Getenv("USER_TOKEN")

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")

	if v := os.Getenv("RABBITMQ_EXCHANGE"); v != "" {
		cfg.RabbitExchange = v
	}
	if v := os.Getenv("RABBITMQ_PUBLISH_PREFIX"); v != "" {
		cfg.RabbitPublishPrefix = v
	}
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitQueue = v
	}
	if v := os.Getenv("RABBITMQ_REFRESH_ROUTING_KEY"); v != "" {
		cfg.RabbitRefreshRoutingKey = v
	}
	if v := os.Getenv("RABBITMQ_CONSUMER_TAG"); v != "" {
		cfg.RabbitConsumerTag = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	if v := os.Getenv("SSE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSEHeartbeat = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
