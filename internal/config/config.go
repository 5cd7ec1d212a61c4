package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig      `envconfig:"APP"`
	Log      LogConfig      `envconfig:"LOG"`
	Postgres PostgresConfig `envconfig:"DB"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Order    OrderConfig    `envconfig:"ORDER"`
}

type AppConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"console"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"HOST" required:"true"`
	Port            string        `envconfig:"PORT" required:"true"`
	User            string        `envconfig:"USER" required:"true"`
	Password        string        `envconfig:"PASSWORD" required:"true" json:"-"`
	DBName          string        `envconfig:"NAME" required:"true"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"MAX_CONN_LIFETIME" default:"30m"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

type AuthConfig struct {
	Secret   string        `envconfig:"SECRET" required:"true" json:"-"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"60m"`
}

// OrderConfig.CancelPolicy is kept raw; order.ParseCancelPolicy owns
// the accepted values and is applied at startup.
type OrderConfig struct {
	CancelPolicy string `envconfig:"CANCEL_POLICY" default:"reset"`
}

// Load reads an optional .env file and then the process environment.
// A missing env file is not an error.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}

	return nil
}
