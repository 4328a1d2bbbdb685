package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN        string        `env:"DATABASE_DSN,required=true"`
	RedisURL           string        `env:"REDIS_URL,required=true"`
	APIPort            int           `env:"API_PORT,default=8080"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
	CountryPrefix      string        `env:"COUNTRY_PREFIX,default=233"`
	HubtelBaseURL      string        `env:"HUBTEL_BASE_URL"`
	MNotifyBaseURL     string        `env:"MNOTIFY_BASE_URL"`
	WhatsAppBaseURL    string        `env:"WHATSAPP_BASE_URL"`
	ConfigLoadTimeout  time.Duration `env:"CONFIG_LOAD_TIMEOUT,default=5s"`
	AuditWriteTimeout  time.Duration `env:"AUDIT_WRITE_TIMEOUT,default=3s"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE,default=60"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
