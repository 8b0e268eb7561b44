package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"

	envPrefix = "QUIZHUB"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Cache  CacheConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int
	FrontendURL  string
	AllowOrigins string
	CookieSecure bool
}

type DBConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type AuthConfig struct {
	JWT        JWTConfig
	OAuth      OAuthConfig
	BcryptCost int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// OAuthConfig configures the single social login provider. The endpoint
// overrides are optional and default to the provider's public endpoints.
type OAuthConfig struct {
	Provider     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	EmailsURL    string
}

type CacheConfig struct {
	AnswerKeyTTL time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "20s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("db.driver", DriverOracle)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.user", "quizhub")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "FREEPDB1")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.tx_timeout", "10s")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt.secret_key", "")
	v.SetDefault("auth.jwt.access_token_ttl", "24h")
	v.SetDefault("auth.jwt.refresh_token_ttl", "168h")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.oauth.provider", "github")
	v.SetDefault("auth.oauth.client_id", "")
	v.SetDefault("auth.oauth.client_secret", "")
	v.SetDefault("auth.oauth.redirect_url", "http://localhost:8090/api/auth/oauth/callback")
	v.SetDefault("auth.oauth.scopes", []string{})

	v.SetDefault("cache.answer_key_ttl", "10m")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml when present and applies QUIZHUB_* environment
// overrides on top of the defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
			FrontendURL:  v.GetString("server.frontend_url"),
			AllowOrigins: v.GetString("server.allow_origins"),
			CookieSecure: v.GetBool("server.cookie_secure"),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(v.GetString("db.driver")),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			DBName:          v.GetString("db.name"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
			TxTimeout:       v.GetDuration("db.tx_timeout"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				SecretKey:       v.GetString("auth.jwt.secret_key"),
				AccessTokenTTL:  v.GetDuration("auth.jwt.access_token_ttl"),
				RefreshTokenTTL: v.GetDuration("auth.jwt.refresh_token_ttl"),
			},
			OAuth: OAuthConfig{
				Provider:     strings.ToLower(v.GetString("auth.oauth.provider")),
				ClientID:     v.GetString("auth.oauth.client_id"),
				ClientSecret: v.GetString("auth.oauth.client_secret"),
				RedirectURL:  v.GetString("auth.oauth.redirect_url"),
				Scopes:       v.GetStringSlice("auth.oauth.scopes"),
				AuthURL:      v.GetString("auth.oauth.auth_url"),
				TokenURL:     v.GetString("auth.oauth.token_url"),
				UserInfoURL:  v.GetString("auth.oauth.user_info_url"),
				EmailsURL:    v.GetString("auth.oauth.emails_url"),
			},
			BcryptCost: v.GetInt("auth.bcrypt_cost"),
		},
		Cache: CacheConfig{
			AnswerKeyTTL: v.GetDuration("cache.answer_key_ttl"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	// Unprefixed names kept for container setups that already export them.
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		cfg.Auth.JWT.SecretKey = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverOracle, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db.driver %q (want %q or %q)", c.DB.Driver, DriverOracle, DriverPostgres)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Auth.JWT.AccessTokenTTL <= 0 || c.Auth.JWT.RefreshTokenTTL <= 0 {
		return errors.New("auth.jwt token TTLs must be positive")
	}
	return nil
}
