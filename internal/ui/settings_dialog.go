package ui

import (
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/soql-studio/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	exportDirEntry     *widget.Entry
	exportFormatSelect *widget.Select
	pollIntervalEntry  *widget.Entry
	themeSelect        *widget.Select
	languageSelect     *widget.Select
}

// NewSettingsDialog creates a new settings dialog. onSaved runs after the
// values were stored.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	text := sd.localization.GetText

	sd.exportDirEntry = widget.NewEntry()
	sd.exportDirEntry.SetPlaceHolder("Export directory path")
	browseDirBtn := widget.NewButton(text(KeyBrowse), sd.onBrowseDirectory)
	exportDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.exportDirEntry)

	formatOptions := []string{}
	for _, format := range sd.settings.GetExportFormatOptions() {
		formatOptions = append(formatOptions, string(format))
	}
	sd.exportFormatSelect = widget.NewSelect(formatOptions, nil)

	sd.pollIntervalEntry = widget.NewEntry()
	sd.pollIntervalEntry.SetPlaceHolder(strconv.Itoa(config.MinPollInterval) + "-" + strconv.Itoa(config.MaxPollInterval))

	themeOptions := []string{}
	for _, variant := range sd.settings.GetThemeOptions() {
		themeOptions = append(themeOptions, string(variant))
	}
	sd.themeSelect = widget.NewSelect(themeOptions, nil)

	languageOptions := []string{}
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sd.languageSelect = widget.NewSelect(languageOptions, nil)
	sd.languageSelect.PlaceHolder = "Select language"

	form := container.NewVBox(
		widget.NewLabel(text(KeyExportDirectory)+":"),
		exportDirRow,

		widget.NewLabel(text(KeyExportFormat)+":"),
		sd.exportFormatSelect,

		widget.NewSeparator(),

		widget.NewLabel(text(KeyPollInterval)+":"),
		sd.pollIntervalEntry,

		widget.NewLabel(text(KeyTheme)+":"),
		sd.themeSelect,

		widget.NewLabel(text(KeyLanguage)+":"),
		sd.languageSelect,
	)

	sd.dialog = dialog.NewCustomConfirm(
		text(KeySettings),
		text(KeySave),
		text(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(500, 420))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.exportDirEntry.SetText(sd.settings.GetExportDirectory())
	sd.exportFormatSelect.SetSelected(string(sd.settings.GetExportFormat()))
	sd.pollIntervalEntry.SetText(strconv.Itoa(int(sd.settings.GetPollInterval() / time.Millisecond)))
	sd.themeSelect.SetSelected(string(sd.settings.GetTheme()))
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.exportDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.exportDirEntry.Text; dir != "" {
		sd.settings.SetExportDirectory(dir)
	}

	if sd.exportFormatSelect.Selected != "" {
		sd.settings.SetExportFormat(config.ExportFormat(sd.exportFormatSelect.Selected))
	}

	if ms, err := strconv.Atoi(sd.pollIntervalEntry.Text); err == nil {
		sd.settings.SetPollInterval(ms)
	}

	if sd.themeSelect.Selected != "" {
		sd.settings.SetTheme(config.ThemeVariant(sd.themeSelect.Selected))
	}

	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}
