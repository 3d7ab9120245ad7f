package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "FORMFLOW_"

// FromEnv overlays FORMFLOW_* variables on cfg. Files are loaded with
// godotenv first without overriding variables already set; with no files an
// optional .env in the working directory is used.
func FromEnv(cfg Config, files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("config: load env files: %w", err)
	}

	setString(&cfg.Locale, "LOCALE")
	setString(&cfg.MessagesFile, "MESSAGES_FILE")
	setString(&cfg.PageURL, "PAGE_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Endpoints.Contact, "ENDPOINT_CONTACT")
	setString(&cfg.Endpoints.Newsletter, "ENDPOINT_NEWSLETTER")
	setString(&cfg.Endpoints.Appointment, "ENDPOINT_APPOINTMENT")
	setString(&cfg.Patterns.Email, "PATTERN_EMAIL")
	setString(&cfg.Patterns.Phone, "PATTERN_PHONE")
	setString(&cfg.Patterns.URL, "PATTERN_URL")

	if err := setBool(&cfg.Simulation, "SIMULATION"); err != nil {
		return Config{}, err
	}
	for key, target := range map[string]*int{
		"SIMULATED_LATENCY_MS": &cfg.SimulatedLatencyMS,
		"PANEL_LIFETIME_MS":    &cfg.PanelLifetimeMS,
		"MATCH_TIMEOUT_MS":     &cfg.MatchTimeoutMS,
	} {
		if err := setInt(target, key); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func setString(target *string, key string) {
	if value, ok := lookup(key); ok {
		*target = value
	}
}

func setBool(target *bool, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	*target = parsed
	return nil
}

func setInt(target *int, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	*target = parsed
	return nil
}
