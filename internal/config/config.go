package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	Domain      string `envconfig:"DOMAIN"`

	// Endpoint of the transactional email provider. Empty disables outbound
	// mail; the workflows treat mail as best-effort either way.
	EmailWebhookURL string `envconfig:"EMAIL_WEBHOOK_URL"`
	EmailFrom       string `envconfig:"EMAIL_FROM" default:"no-reply@afterlife.app"`

	// Base URL used inside invitation emails.
	ClientURL string `envconfig:"CLIENT_URL" default:"http://localhost:5173"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
