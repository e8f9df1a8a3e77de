package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name     string `mapstructure:"NAME"`
		Port     string `mapstructure:"PORT"`
		LogLevel string `mapstructure:"LOG_LEVEL"`
	}

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
		}
		Mongo struct {
			Url      string `mapstructure:"URL"`
			Database string `mapstructure:"DATABASE"`
		}
	}

	JWT struct {
		PublicKeyPath  string        `mapstructure:"PUBLIC_KEY_PATH"`
		PrivateKeyPath string        `mapstructure:"PRIVATE_KEY_PATH"`
		AccessTTL      time.Duration `mapstructure:"ACCESS_TTL"`
	}

	HUB struct {
		AllowedOrigins   []string      `mapstructure:"ALLOWED_ORIGINS"`
		MaxConnections   int           `mapstructure:"MAX_CONNECTIONS"`
		ConnectionsPerIP int           `mapstructure:"CONNECTIONS_PER_IP"`
		SendBuffer       int           `mapstructure:"SEND_BUFFER"`
		ChatWriteTimeout time.Duration `mapstructure:"CHAT_WRITE_TIMEOUT"`
		PruneInterval    time.Duration `mapstructure:"PRUNE_INTERVAL"`
		IdentityCacheTTL time.Duration `mapstructure:"IDENTITY_CACHE_TTL"`
		AuthorizeJoins   bool          `mapstructure:"AUTHORIZE_JOINS"`
	}

	WORKER struct {
		Workers      int           `mapstructure:"WORKERS"`
		PollInterval time.Duration `mapstructure:"POLL_INTERVAL"`
		MaxRetry     int           `mapstructure:"MAX_RETRY"`
	}

	MAILTRAP struct {
		SMTPHost string `mapstructure:"SMTP_HOST"`
		SMTPPort int    `mapstructure:"SMTP_PORT"`
		Username string `mapstructure:"USERNAME"`
		Password string `mapstructure:"PASSWORD"`
		From     string `mapstructure:"FROM"`
		TO       string `mapstructure:"TO"`
	}
}

var Conf *AppConfig

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP.NAME", "collab-hub")
	v.SetDefault("APP.PORT", ":8080")
	v.SetDefault("APP.LOG_LEVEL", "info")
	v.SetDefault("DATABASE.MONGO.DATABASE", "collab")
	v.SetDefault("JWT.PUBLIC_KEY_PATH", "public.pem")
	v.SetDefault("JWT.ACCESS_TTL", time.Hour)
	v.SetDefault("HUB.ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("HUB.MAX_CONNECTIONS", 10000)
	v.SetDefault("HUB.CONNECTIONS_PER_IP", 20)
	v.SetDefault("HUB.SEND_BUFFER", 256)
	v.SetDefault("HUB.CHAT_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("HUB.PRUNE_INTERVAL", time.Minute)
	v.SetDefault("HUB.IDENTITY_CACHE_TTL", 30*time.Second)
	v.SetDefault("HUB.AUTHORIZE_JOINS", true)
	v.SetDefault("WORKER.WORKERS", 5)
	v.SetDefault("WORKER.POLL_INTERVAL", time.Second)
	v.SetDefault("WORKER.MAX_RETRY", 3)
}

func LoadConfig() error {
	return LoadConfigFrom(".")
}

// LoadConfigFrom reads application.yaml from dir. Environment variables
// prefixed with CHATAPP_ override file values, e.g. CHATAPP_APP_PORT.
func LoadConfigFrom(dir string) error {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CHATAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
