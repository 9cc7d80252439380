package config

import (
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	PostgresDSN       string        `mapstructure:"POSTGRES_DSN"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBLogMode         bool          `mapstructure:"DB_LOG_MODE"`

	JWTSecretKey         string `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer            string `mapstructure:"JWT_ISSUER"`
	JWTAudience          string `mapstructure:"JWT_AUDIENCE"`
	JWTExpirationMinutes int    `mapstructure:"JWT_EXPIRATION_MINUTES"`

	// The cookie lifetime is intentionally independent of the server-side
	// token TTL; both constants are preserved as shipped.
	RefreshTokenTTLDays  int `mapstructure:"REFRESH_TOKEN_TTL_DAYS"`
	RefreshCookieTTLDays int `mapstructure:"REFRESH_COOKIE_TTL_DAYS"`

	TokenSweepInterval  time.Duration `mapstructure:"TOKEN_SWEEP_INTERVAL"`
	TokenSweepRetention time.Duration `mapstructure:"TOKEN_SWEEP_RETENTION"`
}

// AccessTokenTTL returns the configured access-token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the server-side refresh-token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}

// RefreshCookieTTL returns the lifetime of the refresh-token cookie.
func (c *Config) RefreshCookieTTL() time.Duration {
	return time.Duration(c.RefreshCookieTTLDays) * 24 * time.Hour
}

func GetConfig() *Config {
	once.Do(func() {
		// .env is optional; system env vars take precedence either way
		if err := godotenv.Load(); err != nil {
			log.Println("[WARNING]: .env file not found, relying on defaults and system ENV variables.")
		}

		viper.SetDefault("PORT", "4000")
		viper.SetDefault("ENVIRONMENT", "development")
		viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:4200")
		viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
		viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
		viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
		viper.SetDefault("DB_LOG_MODE", false)
		viper.SetDefault("JWT_ISSUER", "trackerApi")
		viper.SetDefault("JWT_AUDIENCE", "trackerApp")
		viper.SetDefault("JWT_EXPIRATION_MINUTES", 60)
		viper.SetDefault("REFRESH_TOKEN_TTL_DAYS", 30)
		viper.SetDefault("REFRESH_COOKIE_TTL_DAYS", 7)
		viper.SetDefault("TOKEN_SWEEP_INTERVAL", "1h")
		viper.SetDefault("TOKEN_SWEEP_RETENTION", "720h")

		viper.AutomaticEnv()

		// bind every known key so AutomaticEnv picks them up
		// without requiring a config file on disk
		for _, key := range []string{
			"PORT", "ENVIRONMENT", "ALLOWED_ORIGINS",
			"POSTGRES_DSN", "DB_MAX_IDLE_CONNS", "DB_MAX_OPEN_CONNS",
			"DB_CONN_MAX_LIFETIME", "DB_LOG_MODE",
			"JWT_SECRET_KEY", "JWT_ISSUER", "JWT_AUDIENCE", "JWT_EXPIRATION_MINUTES",
			"REFRESH_TOKEN_TTL_DAYS", "REFRESH_COOKIE_TTL_DAYS",
			"TOKEN_SWEEP_INTERVAL", "TOKEN_SWEEP_RETENTION",
		} {
			if err := viper.BindEnv(key); err != nil {
				log.Fatalf("Error binding env key %s: %s", key, err)
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			log.Fatalf("Error unmarshalling config, %s", err)
		}

		config.DBConnMaxLifetime = parseDurationOr("DB_CONN_MAX_LIFETIME", time.Hour)
		config.TokenSweepInterval = parseDurationOr("TOKEN_SWEEP_INTERVAL", time.Hour)
		config.TokenSweepRetention = parseDurationOr("TOKEN_SWEEP_RETENTION", 30*24*time.Hour)
	})

	return config
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s format '%s', using default %s. Error: %v\n",
			key, raw, fallback, err)
		return fallback
	}
	return parsed
}
