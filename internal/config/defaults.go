package config

import "github.com/spf13/viper"

// Default values for configuration
const (
	DefaultLedgerBackend   = "sheets"
	DefaultLedgerWorksheet = "Notes"

	DefaultDeleteDelay = 5 // seconds

	DefaultMinHour  = 10
	DefaultMaxHour  = 22
	DefaultTimezone = "Local"

	DefaultDBPath               = "notebot.db"
	DefaultJournalRetentionDays = 90

	DefaultLogLevel      = "info"
	DefaultLogJSON       = false
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Names of the registered maintenance tasks.
const (
	TaskJournalPrune   = "journal_prune"
	TaskSQLMaintenance = "sql_maintenance"
)

// DefaultMessages are the user-visible strings used when none are configured.
var DefaultMessages = MessagesConfig{
	Welcome:          "Welcome! Send me any message to save it as a note.",
	Help:             "Send any message to save it. I'll delete it after a few seconds and send you one note daily.",
	NotAuthorized:    "You're not authorized to use this bot.",
	Saved:            "Note saved. This will disappear...",
	SaveFailed:       "Sorry, the note could not be saved. Please try again later.",
	RandomNoteFormat: "📝 Random note:\n\n%s\n\nSaved: %s",
	DismissButton:    "👍 Got it",
	CmdStart:         "Start the bot",
	CmdHelp:          "How to use the bot",
}

// DefaultTasks are the maintenance tasks and their cron schedules (with seconds).
var DefaultTasks = map[string]TaskConfig{
	TaskJournalPrune:   {Enabled: true, Schedule: "0 30 3 * * *"},
	TaskSQLMaintenance: {Enabled: true, Schedule: "0 0 4 * * 0"},
}

// setDefaults registers a default for every key so that environment variables
// are picked up by Unmarshal even when no config file mentions the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.user_ids", []int64{})

	v.SetDefault("ledger.backend", DefaultLedgerBackend)
	v.SetDefault("ledger.spreadsheet_id", "")
	v.SetDefault("ledger.worksheet", DefaultLedgerWorksheet)
	v.SetDefault("ledger.credentials_file", "")

	v.SetDefault("notes.delete_delay", DefaultDeleteDelay)

	v.SetDefault("scheduler.min_hour", DefaultMinHour)
	v.SetDefault("scheduler.max_hour", DefaultMaxHour)
	v.SetDefault("scheduler.timezone", DefaultTimezone)
	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.journal_retention_days", DefaultJournalRetentionDays)

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("logger.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logger.max_age_days", DefaultLogMaxAgeDays)
	v.SetDefault("logger.compress", false)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.saved", DefaultMessages.Saved)
	v.SetDefault("messages.save_failed", DefaultMessages.SaveFailed)
	v.SetDefault("messages.random_note_format", DefaultMessages.RandomNoteFormat)
	v.SetDefault("messages.dismiss_button", DefaultMessages.DismissButton)
	v.SetDefault("messages.cmd_start", DefaultMessages.CmdStart)
	v.SetDefault("messages.cmd_help", DefaultMessages.CmdHelp)
}
