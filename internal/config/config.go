package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8081"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" envDefault:"false"`
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL          time.Duration `env:"JWT_TTL" envDefault:"168h"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"expense-api"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
	DefaultCurrency string        `env:"DEFAULT_CURRENCY" envDefault:"INR"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	FrontendOrigin  string        `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string        `env:"GOOGLE_REDIRECT_URI"`
	OAuthStateTTL      time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	OAuthTicketTTL     time.Duration `env:"OAUTH_TICKET_TTL" envDefault:"15m"`
	OAuthCookieSecure  bool          `env:"OAUTH_COOKIE_SECURE" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RabbitMQURL string `env:"RABBITMQ_URL"`
	EventsQueue string `env:"EVENTS_QUEUE" envDefault:"account.events"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GoogleEnabled indica si hay credenciales suficientes para el login con Google.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURI != ""
}

// MigrateConfig es el subconjunto que necesita cmd/migrate.
type MigrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

// LoadMigrateConfig lee solo DATABASE_URL, sin exigir el resto de la configuracion de la API.
func LoadMigrateConfig() (*MigrateConfig, error) {
	var cfg MigrateConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
