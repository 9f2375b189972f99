package config

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/ytget/soql-studio/internal/platform"
)

// ThemeVariant selects the color scheme
type ThemeVariant string

const (
	ThemeSystem ThemeVariant = "system"
	ThemeLight  ThemeVariant = "light"
	ThemeDark   ThemeVariant = "dark"
)

// ExportFormat selects the file type written by the export action
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// Settings keys for Fyne preferences
const (
	KeyTheme        = "theme"
	KeyLanguage     = "app_language"
	KeyExportDir    = "export_directory"
	KeyExportFormat = "export_format"
	KeyPollInterval = "poll_interval_ms"
)

// Default values
const (
	DefaultTheme        = ThemeLight
	DefaultLanguage     = "system"
	DefaultExportFormat = ExportXLSX
	DefaultPollInterval = 16

	MinPollInterval = 16
	MaxPollInterval = 1000
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetTheme returns the configured theme variant
func (s *Settings) GetTheme() ThemeVariant {
	variant := ThemeVariant(s.app.Preferences().String(KeyTheme))
	switch variant {
	case ThemeSystem, ThemeLight, ThemeDark:
		return variant
	default:
		s.SetTheme(DefaultTheme)
		return DefaultTheme
	}
}

// SetTheme sets the theme variant
func (s *Settings) SetTheme(variant ThemeVariant) {
	s.app.Preferences().SetString(KeyTheme, string(variant))
}

// GetThemeOptions returns available theme variants
func (s *Settings) GetThemeOptions() []ThemeVariant {
	return []ThemeVariant{ThemeSystem, ThemeLight, ThemeDark}
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
	}
}

// GetExportDirectory returns the directory exports are written to
func (s *Settings) GetExportDirectory() string {
	dir := s.app.Preferences().String(KeyExportDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDocumentsDir()
		if err != nil {
			defaultDir = "/tmp/soql-studio"
		}
		s.SetExportDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetExportDirectory sets the export directory
func (s *Settings) SetExportDirectory(dir string) {
	s.app.Preferences().SetString(KeyExportDir, dir)
}

// GetExportFormat returns the configured export format
func (s *Settings) GetExportFormat() ExportFormat {
	format := ExportFormat(s.app.Preferences().String(KeyExportFormat))
	if format != ExportXLSX && format != ExportCSV {
		s.SetExportFormat(DefaultExportFormat)
		return DefaultExportFormat
	}
	return format
}

// SetExportFormat sets the export format
func (s *Settings) SetExportFormat(format ExportFormat) {
	s.app.Preferences().SetString(KeyExportFormat, string(format))
}

// GetExportFormatOptions returns available export formats
func (s *Settings) GetExportFormatOptions() []ExportFormat {
	return []ExportFormat{ExportXLSX, ExportCSV}
}

// GetPollInterval returns how often the UI drains the fetch flows
func (s *Settings) GetPollInterval() time.Duration {
	value := s.app.Preferences().Int(KeyPollInterval)
	if value <= 0 {
		s.SetPollInterval(DefaultPollInterval)
		value = DefaultPollInterval
	}
	return time.Duration(value) * time.Millisecond
}

// SetPollInterval sets the poll interval in milliseconds
func (s *Settings) SetPollInterval(ms int) {
	if ms < MinPollInterval {
		ms = MinPollInterval
	}
	if ms > MaxPollInterval {
		ms = MaxPollInterval
	}
	s.app.Preferences().SetInt(KeyPollInterval, ms)
}
