// Package config loads, defaults and validates the notebot configuration.
// Values come from built-in defaults, an optional YAML file and NOTEBOT_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/edgard/notebot/internal/errs"
)

// EnvPrefix is prepended to every environment variable, e.g. NOTEBOT_TELEGRAM_TOKEN.
const EnvPrefix = "NOTEBOT"

// Load reads the configuration from path (optional, may not exist) and the
// environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded",
		"ledger_backend", cfg.Ledger.Backend,
		"recipients", len(cfg.Telegram.UserIDs),
		"min_hour", cfg.Scheduler.MinHour,
		"max_hour", cfg.Scheduler.MaxHour,
		"timezone", cfg.Scheduler.Timezone,
		"db_path", cfg.Database.Path)

	return cfg, nil
}

// Validate checks struct constraints and resolves the scheduler time zone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.NewConfigError("invalid configuration", err)
	}

	if err := checkNoteFormat(c.Messages.RandomNoteFormat); err != nil {
		return errs.NewConfigError("invalid messages.random_note_format", err)
	}

	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return errs.NewConfigError(fmt.Sprintf("invalid scheduler timezone %q", c.Scheduler.Timezone), err)
	}
	c.Scheduler.location = loc

	return nil
}

// checkNoteFormat requires exactly two %s verbs (note text, saved timestamp)
// and no other formatting verbs. Literal percent signs are written as %%.
func checkNoteFormat(format string) error {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 == len(format) {
			return errors.New("trailing % in template")
		}
		i++
		switch format[i] {
		case '%':
		case 's':
			verbs++
		default:
			return fmt.Errorf("unsupported verb %%%c, only %%s and %%%% are allowed", format[i])
		}
	}
	if verbs != 2 {
		return fmt.Errorf("template has %d %%s verbs, want 2 (note text and saved timestamp)", verbs)
	}
	return nil
}

// Location is the time zone used for note timestamps and the daily schedule.
func (s SchedulerConfig) Location() *time.Location {
	if s.location == nil {
		return time.Local
	}
	return s.location
}

// DeleteAfter is the delay before captured messages are removed from the chat.
func (n NotesConfig) DeleteAfter() time.Duration {
	return time.Duration(n.DeleteDelay) * time.Second
}
