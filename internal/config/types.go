package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Notes     NotesConfig     `mapstructure:"notes"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// TelegramConfig holds the bot credentials and the allow-list of users.
type TelegramConfig struct {
	Token   string  `mapstructure:"token"    validate:"required"`
	UserIDs []int64 `mapstructure:"user_ids" validate:"required,min=1,dive,gt=0"`
}

// LedgerConfig selects and configures the note ledger backend.
type LedgerConfig struct {
	Backend         string `mapstructure:"backend"          validate:"required,oneof=sheets sqlite"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"   validate:"required_if=Backend sheets"`
	Worksheet       string `mapstructure:"worksheet"        validate:"required_if=Backend sheets"`
	CredentialsFile string `mapstructure:"credentials_file" validate:"required_if=Backend sheets"`
}

// NotesConfig controls note capture.
type NotesConfig struct {
	// DeleteDelay is the number of seconds captured messages stay in the chat.
	DeleteDelay int `mapstructure:"delete_delay" validate:"min=0,max=86400"`
}

// SchedulerConfig controls the daily random note and the maintenance tasks.
type SchedulerConfig struct {
	MinHour  int                   `mapstructure:"min_hour" validate:"min=0,max=23"`
	MaxHour  int                   `mapstructure:"max_hour" validate:"min=0,max=23,gtefield=MinHour"`
	Timezone string                `mapstructure:"timezone" validate:"required"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"    validate:"dive"`

	location *time.Location
}

// TaskConfig enables a named maintenance task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// DatabaseConfig configures the local SQLite file.
type DatabaseConfig struct {
	Path                 string `mapstructure:"path"                   validate:"required"`
	JournalRetentionDays int    `mapstructure:"journal_retention_days" validate:"min=1"`
}

// LoggerConfig configures slog output and optional file rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level"        validate:"oneof=debug info warn error"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups"  validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

// MessagesConfig holds every user-visible string.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"            validate:"required"`
	Help             string `mapstructure:"help"               validate:"required"`
	NotAuthorized    string `mapstructure:"not_authorized"     validate:"required"`
	Saved            string `mapstructure:"saved"              validate:"required"`
	SaveFailed       string `mapstructure:"save_failed"        validate:"required"`
	RandomNoteFormat string `mapstructure:"random_note_format" validate:"required"`
	DismissButton    string `mapstructure:"dismiss_button"     validate:"required"`
	CmdStart         string `mapstructure:"cmd_start"          validate:"required"`
	CmdHelp          string `mapstructure:"cmd_help"           validate:"required"`
}
