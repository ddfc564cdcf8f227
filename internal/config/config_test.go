package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viczaid25/CreditCardApp/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"KeyPrefixPayment", config.KeyPrefixPayment},
		{"KeyPrefixCut", config.KeyPrefixCut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values match the documented reminder policy.
func TestDefaults_Sanity(t *testing.T) {
	assert.Equal(t, 3, config.DefaultDaysBefore)
	assert.Equal(t, 9, config.DefaultReminderHour)
	assert.Equal(t, 0, config.DefaultReminderMinute)
	assert.Less(t, config.UrgentMaxDays, config.UpcomingMaxDays)
	assert.Len(t, config.Palette, 8)
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := config.LoadSettings(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLanguage, s.Language)
	assert.Equal(t, config.DefaultDaysBefore, s.DaysBefore)
	assert.Equal(t, config.DefaultReminderHour, s.ReminderHour)
	assert.Equal(t, config.DefaultPort, s.ServerPort)
	assert.Equal(t, config.DefaultDispatchSpec, s.DispatchSpec)
	assert.Equal(t, config.StoreFileName, filepath.Base(s.StorePath))
	assert.Equal(t, config.RemindersFileName, filepath.Base(s.RemindersPath))
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "settings.toml")
	content := "language = \"es\"\nreminder_days_before = 5\nreminder_hour = 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	t.Setenv("CARDCAL_REMINDER_MINUTE", "30")

	s, err := config.LoadSettings(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "es", s.Language)
	assert.Equal(t, 5, s.DaysBefore)
	assert.Equal(t, 8, s.ReminderHour)
	assert.Equal(t, 30, s.ReminderMinute)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := config.LoadSettings(viper.New(), filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsRead)
}

func TestSettings_Validate(t *testing.T) {
	valid := config.Settings{
		Language:     "en",
		DaysBefore:   3,
		ReminderHour: 9,
		ServerPort:   "18081",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"negative lead time", func(s *config.Settings) { s.DaysBefore = -1 }, config.ErrDaysBefore},
		{"hour out of range", func(s *config.Settings) { s.ReminderHour = 24 }, config.ErrReminderHour},
		{"minute out of range", func(s *config.Settings) { s.ReminderMinute = 60 }, config.ErrReminderMinute},
		{"unknown language", func(s *config.Settings) { s.Language = "de" }, config.ErrLanguage},
		{"empty port", func(s *config.Settings) { s.ServerPort = "" }, config.ErrPortRequired},
		{"port not a number", func(s *config.Settings) { s.ServerPort = "http" }, config.ErrPortNumber},
		{"port too large", func(s *config.Settings) { s.ServerPort = "70000" }, config.ErrPortRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
