package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "password", "dummytokenvalue",
}

type Config struct {
	Port                       int    `env:"PORT" envDefault:"3000"`
	ProvisioningBaseURL        string `env:"PROVISIONING_BASE_URL" envDefault:"https://bow.app/platform/api/v1"`
	ProvisioningAPIToken       string `env:"PROVISIONING_API_TOKEN,required"`
	ProvisioningUserPassword   string `env:"PROVISIONING_USER_PASSWORD,required"`
	ProvisioningTimeoutSeconds int    `env:"PROVISIONING_TIMEOUT_SECONDS" envDefault:"10"`
	RedisURL                   string `env:"REDIS_URL"`
	NotifyCallbackURL          string `env:"NOTIFY_CALLBACK_URL"`
	LogLevel                   string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) ProvisioningTimeout() time.Duration {
	return time.Duration(c.ProvisioningTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if err := validateSecret("PROVISIONING_API_TOKEN", c.ProvisioningAPIToken); err != nil {
		return err
	}
	if err := validateSecret("PROVISIONING_USER_PASSWORD", c.ProvisioningUserPassword); err != nil {
		return err
	}

	if isProduction && c.RedisURL == "" {
		log.Warn().Msg("REDIS_URL is empty in production: conversation state is in-memory and lost on restart")
	}

	return nil
}

func validateSecret(name, value string) error {
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak placeholder; set a real secret (generate with: openssl rand -base64 32)", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
