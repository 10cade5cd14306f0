// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	sweepOnStart   = pflag.Bool("sweep-on-start", false, "Runs an expired token sweep immediately on startup")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"postgres", "sqlite"}
)

// InviteURLPrefix is the only scheme+domain an invite link may use.
// Committee writes that don't match it are rejected outright.
const InviteURLPrefix = "https://chat.whatsapp.com/"

// SweepOnStart reports whether the --sweep-on-start flag was passed.
func SweepOnStart() bool {
	return *sweepOnStart
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
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("session.jwt_secret", "session_jwt_secret")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	v.BindEnv("whatsapp.fallback_invite_url", "whatsapp_fallback_invite_url")
	v.BindEnv("whatsapp.config_cache_ttl", "whatsapp_config_cache_ttl")

	v.BindEnv("tokens.email_link_ttl", "tokens_email_link_ttl")
	v.BindEnv("tokens.short_code_ttl", "tokens_short_code_ttl")
	v.BindEnv("tokens.six_digit_ttl", "tokens_six_digit_ttl")
	v.BindEnv("tokens.sweep_schedule", "tokens_sweep_schedule")

	v.BindEnv("ratelimit.request_window", "ratelimit_request_window")
	v.BindEnv("ratelimit.request_max", "ratelimit_request_max")
	v.BindEnv("ratelimit.redeem_per_second", "ratelimit_redeem_per_second")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// Per-channel TTLs. The 6-digit codes are typed by hand off an
	// email, they don't need to live longer than a few minutes.
	v.SetDefault("tokens.email_link_ttl", "24h")
	v.SetDefault("tokens.short_code_ttl", "24h")
	v.SetDefault("tokens.six_digit_ttl", "10m")
	v.SetDefault("tokens.sweep_schedule", "@hourly")

	v.SetDefault("whatsapp.config_cache_ttl", "20m")

	v.SetDefault("ratelimit.request_window", "15m")
	v.SetDefault("ratelimit.request_max", 3)
	v.SetDefault("ratelimit.redeem_per_second", 5)

	v.SetDefault("cloudflare.turnstile.enabled", false)

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

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("no database DSN provided")
	}

	if v.GetString("session.jwt_secret") == "" {
		return errors.New("no session JWT secret provided, committee endpoints can't work without one")
	}

	if v.GetString("mail.host") == "" || v.GetString("mail.sender_address") == "" {
		return errors.New("mail host and sender address are required for the email verification channel")
	}

	if fallback := v.GetString("whatsapp.fallback_invite_url"); fallback != "" {
		if !strings.HasPrefix(fallback, InviteURLPrefix) {
			return fmt.Errorf("whatsapp.fallback_invite_url must start with %s", InviteURLPrefix)
		}
	}

	for _, key := range []string{
		"tokens.email_link_ttl",
		"tokens.short_code_ttl",
		"tokens.six_digit_ttl",
		"whatsapp.config_cache_ttl",
		"ratelimit.request_window",
	} {
		if v.GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}

	if v.GetInt("ratelimit.request_max") <= 0 {
		return errors.New("ratelimit.request_max must be bigger than 0")
	}

	if v.GetString("redis.addr") == "" {
		zap.L().Warn("No redis.addr configured, rate limits won't be shared across instances and the invite URL will fall back to config.toml")
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. The manual request endpoint won't be guarded against bots")
	} else {
		if v.GetString("cloudflare.turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	}

	return nil
}
