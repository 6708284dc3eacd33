// Package config defines the environment-driven application configuration.
package config

// AppConfig is the root configuration, populated from environment variables.
type AppConfig struct {
	Env           string           `env:"APP_ENV" envDefault:"development"`
	HTTP          HTTPConfig       `envPrefix:"HTTP_"`
	DB            DBConfig         `envPrefix:"DB_"`
	Redis         RedisConfig      `envPrefix:"REDIS_"`
	Auth          AuthConfig       `envPrefix:"AUTH_"`
	Newsletter    NewsletterConfig `envPrefix:"NEWSLETTER_"`
	Observability ObservabilityConfig
}

// Sanitize normalizes derived fields across all sub-configs.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Newsletter.Sanitize()
	c.Observability.Sanitize()
}

// IsDevelopment reports whether the app runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}
