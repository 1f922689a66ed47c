// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envFile = ".env"

type (
	Config struct {
		HTTP
		Database
		Session
		Mail
		Members
		LogLevel    string
		Environment string
	}

	HTTP struct {
		Port           string
		AllowedOrigins []string
		// Requests per minute and client IP accepted by POST /login.
		LoginRatePerMinute int
		// Proxies whose X-Forwarded-For is believed. Empty means the peer address is the client IP.
		TrustedProxies []string
	}
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		MinConns int32
		MaxConns int32
	}
	Session struct {
		Lifetime      time.Duration
		KeyPairPath   string
		SecureCookies bool
		CSRFSecret    string // empty disables CSRF protection
	}
	Mail struct {
		Domain string
		APIKey string
		From   string
	}
	Members struct {
		VerifyEmail bool
	}
)

// Load reads an optional .env file into the process environment and builds the Config from it.
func Load() *Config {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("environment", "development")
	v.SetDefault("allowed_origins", "http://localhost:8080")
	v.SetDefault("login_rate_per_minute", 10)
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_name", "library_management")
	v.SetDefault("db_min_conns", 1)
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("session_lifetime", "8h")
	v.SetDefault("key_pair_path", "session.key")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_secret", "")
	v.SetDefault("mailgun_domain", "")
	v.SetDefault("mailgun_api_key", "")
	v.SetDefault("mail_from", "Library Administration <library@example.org>")
	v.SetDefault("verify_member_email", false)
	return v
}

// FromViper maps a populated viper instance onto Config.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		HTTP: HTTP{
			Port:               v.GetString("port"),
			AllowedOrigins:     splitList(v.GetString("allowed_origins")),
			LoginRatePerMinute: v.GetInt("login_rate_per_minute"),
			TrustedProxies:     splitList(v.GetString("trusted_proxies")),
		},
		Database: Database{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_pass"),
			Name:     v.GetString("db_name"),
			MinConns: v.GetInt32("db_min_conns"),
			MaxConns: v.GetInt32("db_max_conns"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("session_lifetime"),
			KeyPairPath:   v.GetString("key_pair_path"),
			SecureCookies: v.GetBool("secure_cookies"),
			CSRFSecret:    v.GetString("csrf_secret"),
		},
		Mail: Mail{
			Domain: v.GetString("mailgun_domain"),
			APIKey: v.GetString("mailgun_api_key"),
			From:   v.GetString("mail_from"),
		},
		Members: Members{
			VerifyEmail: v.GetBool("verify_member_email"),
		},
		LogLevel:    strings.ToUpper(v.GetString("log_level")),
		Environment: v.GetString("environment"),
	}

	if cfg.Database.MinConns < 1 {
		cfg.Database.MinConns = 1
	}
	if cfg.Database.MaxConns < cfg.Database.MinConns {
		cfg.Database.MaxConns = cfg.Database.MinConns
	}
	if cfg.Session.Lifetime <= 0 {
		cfg.Session.Lifetime = 8 * time.Hour
	}

	return cfg
}

// ConnString renders the pgx keyword/value connection string.
func (d Database) ConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// IsProduction reports whether outgoing mail should actually be sent.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
