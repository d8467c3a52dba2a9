// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("smtp.enabled", "smtp_enabled")
	v.BindEnv("smtp.host", "smtp_host")
	v.BindEnv("smtp.port", "smtp_port")
	v.BindEnv("smtp.sender", "smtp_sender")
	v.BindEnv("smtp.password", "smtp_password")

	v.BindEnv("limits.login_attempts", "limits_login_attempts")
	v.BindEnv("limits.login_window_minutes", "limits_login_window_minutes")
	v.BindEnv("limits.message_burst", "limits_message_burst")
	v.BindEnv("limits.message_window_seconds", "limits_message_window_seconds")
	v.BindEnv("limits.reset_cooldown_minutes", "limits_reset_cooldown_minutes")

	v.BindEnv("cors.origin", "cors_origin")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)

	v.SetDefault("limits.login_attempts", 5)
	v.SetDefault("limits.login_window_minutes", 15)
	v.SetDefault("limits.message_burst", 5)
	v.SetDefault("limits.message_window_seconds", 60)
	v.SetDefault("limits.reset_cooldown_minutes", 15)

	v.SetDefault("cors.origin", "http://localhost:3000")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetBool("smtp.enabled") {
		if v.GetString("smtp.host") == "" {
			return errors.New("smtp host can't be empty")
		}

		if v.GetString("smtp.sender") == "" {
			return errors.New("smtp sender address can't be empty")
		}

		if v.GetInt("smtp.port") <= 0 {
			return errors.New("invalid smtp port provided")
		}
	} else {
		fmt.Println("[WARNING]: SMTP is disabled. Verification and reset links will be returned in API responses instead of being mailed")
	}

	if v.GetInt("limits.login_attempts") <= 0 {
		return errors.New("limits.login_attempts must be bigger than 0")
	}

	if v.GetInt("limits.message_burst") <= 0 {
		return errors.New("limits.message_burst must be bigger than 0")
	}

	return nil
}

// BaseURL builds the externally visible URL of this server from the
// host config. Used for verification and reset links
func BaseURL() string {
	scheme := "http"
	if v.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, v.GetString("host.domain"), v.GetInt("host.port"))
}
