// Package config loads settings from an optional YAML file, a .env file and
// ALMACEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/almacen/internal/mail"
)

// Config holds runtime settings.
type Config struct {
	Addr      string `mapstructure:"addr"`
	DB        string `mapstructure:"db"`
	Log       string `mapstructure:"log"`
	AdminUser string `mapstructure:"admin_user"`
	SiteURL   string `mapstructure:"site_url"`
	SiteName  string `mapstructure:"site_name"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		TLS      string `mapstructure:"tls"`
	} `mapstructure:"smtp"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

var defaults = map[string]any{
	"addr":            ":8080",
	"db":              "almacen.sqlite3",
	"log":             "",
	"admin_user":      "Admin",
	"site_url":        "http://localhost:8080",
	"site_name":       "Almacen",
	"smtp.host":       "",
	"smtp.port":       587,
	"smtp.username":   "",
	"smtp.password":   "",
	"smtp.from":       "almacen@localhost",
	"smtp.tls":        mail.TLSMandatory,
	"metrics.enabled": true,
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment are used. Environment variables use the ALMACEN_
// prefix with dots replaced by underscores, e.g. ALMACEN_SMTP_HOST.
func Load(path string) (Config, error) {
	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("ALMACEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// Mail returns the SMTP settings.
func (c Config) Mail() mail.Config {
	return mail.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		TLS:      c.SMTP.TLS,
	}
}

// MailEnabled reports whether an SMTP host is configured.
func (c Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}
