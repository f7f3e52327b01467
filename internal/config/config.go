package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	RateBurst       int           `mapstructure:"rate_burst"`
	RatePerSec      int           `mapstructure:"rate_per_sec"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type Auth struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	AccessTTL    time.Duration `mapstructure:"access_ttl"`
	RefreshTTL   time.Duration `mapstructure:"refresh_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookiePath   string        `mapstructure:"cookie_path"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

type Weather struct {
	GeocodingURL string        `mapstructure:"geocoding_url"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Server  Server  `mapstructure:"server"`
	Auth    Auth    `mapstructure:"auth"`
	Weather Weather `mapstructure:"weather"`
	Log     Log     `mapstructure:"log"`
}

// Load reads an optional yaml file and overlays STORMWATCH_* environment
// variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("app.name", "stormwatch-api")
	v.SetDefault("app.env", "dev")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.rate_per_sec", 20)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:5174"})

	v.SetDefault("auth.jwt_secret", "demo-secret-change-in-production")
	v.SetDefault("auth.access_ttl", "15m")
	v.SetDefault("auth.refresh_ttl", "168h")
	v.SetDefault("auth.cookie_name", "refresh_token")
	v.SetDefault("auth.cookie_path", "/api/auth")
	v.SetDefault("auth.cookie_secure", false)

	v.SetDefault("weather.geocoding_url", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("weather.http_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("stormwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("auth.jwt_secret must not be empty")
	}
	return &cfg, nil
}
