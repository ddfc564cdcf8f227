package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the user-tunable runtime configuration.
type Settings struct {
	Language       string `mapstructure:"language"`
	StorePath      string `mapstructure:"store_path"`
	RemindersPath  string `mapstructure:"reminders_path"`
	DaysBefore     int    `mapstructure:"reminder_days_before"`
	ReminderHour   int    `mapstructure:"reminder_hour"`
	ReminderMinute int    `mapstructure:"reminder_minute"`
	ServerPort     string `mapstructure:"server_port"`
	DispatchSpec   string `mapstructure:"dispatch_spec"`
}

// LoadSettings reads the settings file (when present), applies CARDCAL_* environment
// overrides and fills defaults. An empty path means the default location inside
// the user config directory; a missing default file is not an error.
func LoadSettings(v *viper.Viper, path string) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	appDir, err := AppConfigDir()
	if err != nil {
		return Settings{}, err
	}

	v.SetDefault(SettingLanguage, DefaultLanguage)
	v.SetDefault(SettingStorePath, filepath.Join(appDir, StoreFileName))
	v.SetDefault(SettingRemindersPath, filepath.Join(appDir, RemindersFileName))
	v.SetDefault(SettingDaysBefore, DefaultDaysBefore)
	v.SetDefault(SettingReminderHour, DefaultReminderHour)
	v.SetDefault(SettingReminderMinute, DefaultReminderMinute)
	v.SetDefault(SettingServerPort, DefaultPort)
	v.SetDefault(SettingDispatchSpec, DefaultDispatchSpec)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(SettingsFileName)
		v.SetConfigType(SettingsFileType)
		v.AddConfigPath(appDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return s, nil
}

// Validate checks ranges of the reminder timing and server values.
func (s Settings) Validate() error {
	if s.DaysBefore < 0 || s.DaysBefore > MaxDaysBefore {
		return errors.New(ErrDaysBefore)
	}
	if s.ReminderHour < 0 || s.ReminderHour > 23 {
		return errors.New(ErrReminderHour)
	}
	if s.ReminderMinute < 0 || s.ReminderMinute > 59 {
		return errors.New(ErrReminderMinute)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	return ValidatePort(s.ServerPort)
}

// ValidatePort checks that a port string is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < 1 || n > 65535 {
		return errors.New(ErrPortRange)
	}
	return nil
}

// AppConfigDir returns the per-user directory holding settings and data files.
func AppConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, BinaryName), nil
}
