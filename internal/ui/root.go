package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/config"
	"github.com/ytget/soql-studio/internal/export"
	"github.com/ytget/soql-studio/internal/library"
	"github.com/ytget/soql-studio/internal/model"
	"github.com/ytget/soql-studio/internal/platform"
	"github.com/ytget/soql-studio/internal/studio"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	controller   *studio.Controller
	library      *library.Store
	settings     *config.Settings
	localization *Localization
	logger       *zap.Logger

	// Connection and editor
	usernameEntry *widget.Entry
	passwordEntry *widget.Entry
	domainEntry   *widget.Entry
	datasetEntry  *widget.Entry
	queryEditor   *widget.Entry

	// Actions
	runBtn      *widget.Button
	saveBtn     *widget.Button
	analysisBtn *widget.Button
	exportBtn   *widget.Button
	savedSelect *widget.Select
	deleteBtn   *widget.Button

	// Query slot
	querySpinner  *widget.ProgressBarInfinite
	interimLabel  *widget.Label
	errorLabel    *widget.Label
	urlLabel      *widget.Label
	copyURLBtn    *widget.Button
	resultsHeader *widget.Label
	sizeLabel     *widget.Label
	elapsedLabel  *widget.Label
	resultsTable  *widget.Table
	rows          model.Table

	// Analysis slot
	analysisSpinner *widget.ProgressBarInfinite
	planLabel       *widget.Label

	intervals chan time.Duration
}

// NewRootUI creates and initializes the main UI. conn seeds the connection
// fields from the persisted connection file.
func NewRootUI(window fyne.Window, app fyne.App, controller *studio.Controller, store *library.Store, settings *config.Settings, conn config.Connection, logger *zap.Logger) *RootUI {
	if logger == nil {
		logger = zap.NewNop()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		app:          app,
		controller:   controller,
		library:      store,
		settings:     settings,
		localization: localization,
		logger:       logger,
		intervals:    make(chan time.Duration, 1),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	app.Settings().SetTheme(NewCompactTheme(settings.GetTheme()))

	ui.setupUI()
	ui.setConnection(conn)
	ui.refreshSavedQueries()
	ui.render()
	return ui
}

// Run drains the fetch slots on the UI goroutine until ctx is done.
func (ui *RootUI) Run(ctx context.Context) {
	go ui.pollLoop(ctx)
}

func (ui *RootUI) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(ui.settings.GetPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-ui.intervals:
			ticker.Reset(d)
		case <-ticker.C:
			fyne.Do(ui.poll)
		}
	}
}

// poll runs once per frame on the UI goroutine
func (ui *RootUI) poll() {
	if ui.controller.Poll() {
		ui.render()
	}
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()
	text := ui.localization.GetText

	// Connection fields
	ui.usernameEntry = widget.NewEntry()
	ui.passwordEntry = widget.NewPasswordEntry()
	ui.domainEntry = widget.NewEntry()
	ui.domainEntry.SetPlaceHolder("data.cityofnewyork.us")
	ui.domainEntry.OnChanged = func(string) { ui.refreshSavedQueries() }
	ui.datasetEntry = widget.NewEntry()
	ui.datasetEntry.SetPlaceHolder("abcd-1234")

	connection := widget.NewForm(
		widget.NewFormItem(text(KeyUsername), ui.usernameEntry),
		widget.NewFormItem(text(KeyPassword), ui.passwordEntry),
		widget.NewFormItem(text(KeyDomain), ui.domainEntry),
		widget.NewFormItem(text(KeyDataset), ui.datasetEntry),
	)

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	title := widget.NewLabelWithStyle(text(KeyAppTitle), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	var header fyne.CanvasObject = container.NewBorder(nil, nil, title, settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		img := canvas.NewImageFromResource(logo)
		img.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		img.FillMode = canvas.ImageFillContain
		header = container.NewBorder(nil, nil, container.NewHBox(img, title), settingsBtn)
	}

	// Query editor
	ui.queryEditor = widget.NewMultiLineEntry()
	ui.queryEditor.TextStyle = fyne.TextStyle{Monospace: true}
	ui.queryEditor.SetPlaceHolder(text(KeyQueryPlaceholder))
	ui.queryEditor.SetMinRowsVisible(EditorRows)
	ui.queryEditor.Wrapping = fyne.TextWrapWord

	// Action buttons
	ui.runBtn = widget.NewButton(studio.LabelRunQuery, ui.onRunClick)
	ui.runBtn.Importance = widget.HighImportance
	ui.saveBtn = widget.NewButton(text(KeySaveQuery), ui.onSaveQuery)
	ui.analysisBtn = widget.NewButton(text(KeyRunAnalysis), ui.onAnalysisClick)
	ui.exportBtn = widget.NewButton(text(KeyExport), ui.onExport)

	ui.savedSelect = widget.NewSelect(nil, ui.onSavedQuerySelected)
	ui.savedSelect.PlaceHolder = text(KeySavedQueries)
	ui.deleteBtn = widget.NewButton(text(KeyDeleteQuery), ui.onDeleteQuery)
	ui.deleteBtn.Importance = widget.LowImportance

	actions := container.NewHBox(ui.runBtn, ui.saveBtn, ui.analysisBtn, ui.exportBtn)
	saved := container.NewBorder(nil, nil, nil, ui.deleteBtn, ui.savedSelect)

	// Query slot status
	ui.querySpinner = widget.NewProgressBarInfinite()
	ui.querySpinner.Hide()
	ui.interimLabel = widget.NewLabel("")
	ui.errorLabel = widget.NewLabel("")
	ui.errorLabel.Importance = widget.DangerImportance
	ui.errorLabel.Wrapping = fyne.TextWrapWord
	ui.urlLabel = widget.NewLabel("")
	ui.urlLabel.Truncation = fyne.TextTruncateEllipsis
	ui.copyURLBtn = widget.NewButton(IconCopy, ui.onCopyURL)
	ui.copyURLBtn.Importance = widget.LowImportance
	ui.copyURLBtn.Hide()

	ui.resultsHeader = widget.NewLabelWithStyle(text(KeyResults), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.sizeLabel = widget.NewLabel("")
	ui.elapsedLabel = widget.NewLabel("")
	ui.resultsTable = widget.NewTable(ui.tableSize, ui.createCell, ui.updateCell)

	stats := container.NewHBox(ui.resultsHeader, ui.sizeLabel, ui.elapsedLabel)
	status := container.NewVBox(
		container.NewBorder(nil, nil, nil, ui.interimLabel, ui.querySpinner),
		ui.errorLabel,
		container.NewBorder(nil, nil, ui.copyURLBtn, nil, ui.urlLabel),
		stats,
	)

	// Analysis slot
	ui.analysisSpinner = widget.NewProgressBarInfinite()
	ui.analysisSpinner.Hide()
	ui.planLabel = widget.NewLabel("")
	ui.planLabel.Wrapping = fyne.TextWrapWord
	analysis := container.NewBorder(
		container.NewVBox(widget.NewLabelWithStyle(text(KeyAnalysis), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), ui.analysisSpinner),
		nil, nil, nil,
		container.NewVScroll(ui.planLabel),
	)

	editor := container.NewBorder(nil, container.NewVBox(actions, saved), nil, nil, ui.queryEditor)
	top := container.NewVBox(header, widget.NewSeparator(), connection)
	results := container.NewBorder(status, nil, nil, nil, ui.resultsTable)
	tabs := container.NewAppTabs(
		container.NewTabItem(text(KeyResults), results),
		container.NewTabItem(text(KeyAnalysis), analysis),
	)

	split := container.NewVSplit(editor, tabs)
	split.SetOffset(0.35)

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, split))
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	text := ui.localization.GetText
	ui.window.SetTitle(text(KeyAppTitle))
	ui.saveBtn.SetText(text(KeySaveQuery))
	ui.exportBtn.SetText(text(KeyExport))
	ui.deleteBtn.SetText(text(KeyDeleteQuery))
	ui.savedSelect.PlaceHolder = text(KeySavedQueries)
	ui.savedSelect.Refresh()
	ui.resultsHeader.SetText(text(KeyResults))
	ui.render()
}

// connection reads the connection fields
func (ui *RootUI) connection() config.Connection {
	return config.Connection{
		Username: ui.usernameEntry.Text,
		Password: ui.passwordEntry.Text,
		Domain:   strings.TrimSpace(ui.domainEntry.Text),
		Dataset:  strings.TrimSpace(ui.datasetEntry.Text),
		Query:    ui.queryEditor.Text,
	}
}

func (ui *RootUI) setConnection(conn config.Connection) {
	ui.usernameEntry.SetText(conn.Username)
	ui.passwordEntry.SetText(conn.Password)
	ui.domainEntry.SetText(conn.Domain)
	ui.datasetEntry.SetText(conn.Dataset)
	ui.queryEditor.SetText(conn.Query)
}

func (ui *RootUI) validConnection(conn config.Connection) bool {
	if conn.Domain == "" || conn.Dataset == "" {
		ui.showPopup(ui.localization.GetText(KeyMissingConnection))
		return false
	}
	return true
}

// onRunClick toggles the query slot between running and canceled
func (ui *RootUI) onRunClick() {
	conn := ui.connection()
	if !ui.controller.QueryActive() && !ui.validConnection(conn) {
		return
	}
	if err := ui.controller.ToggleQuery(conn); err != nil {
		ui.logger.Warn("query not started", zap.Error(err))
	}
	ui.render()
}

// onAnalysisClick starts the analysis, or cancels the running one
func (ui *RootUI) onAnalysisClick() {
	if ui.controller.AnalysisActive() {
		ui.controller.CancelAnalysis()
		ui.render()
		return
	}

	conn := ui.connection()
	if !ui.validConnection(conn) {
		return
	}
	if err := ui.controller.RunAnalysis(conn); err != nil {
		if errors.Is(err, studio.ErrSlotBusy) {
			ui.showPopup(ui.localization.GetText(KeyStillFetching))
		}
		ui.logger.Warn("analysis not started", zap.Error(err))
	}
	ui.render()
}

// render copies controller state into the widgets
func (ui *RootUI) render() {
	text := ui.localization.GetText
	q := ui.controller.QueryState()

	ui.runBtn.SetText(ui.controller.ButtonLabel())

	if q.IsRunning {
		ui.querySpinner.Show()
		ui.querySpinner.Start()
	} else {
		ui.querySpinner.Stop()
		ui.querySpinner.Hide()
	}
	ui.interimLabel.SetText(q.InterimSizeString())
	ui.errorLabel.SetText(q.Error)

	if q.HasRows() {
		ui.urlLabel.SetText(ui.controller.LastURL())
		ui.copyURLBtn.Show()
		ui.resultsHeader.SetText(q.RowCountString())
		ui.sizeLabel.SetText(q.DisplayedSizeString())
		ui.elapsedLabel.SetText(q.ElapsedString())
	} else {
		ui.urlLabel.SetText("")
		ui.copyURLBtn.Hide()
		ui.resultsHeader.SetText(text(KeyResults))
		ui.sizeLabel.SetText("")
		ui.elapsedLabel.SetText("")
	}
	ui.setRows(q.Rows)

	a := ui.controller.AnalysisState()
	if a.IsRunning {
		ui.analysisSpinner.Show()
		ui.analysisSpinner.Start()
		ui.analysisBtn.SetText(text(KeyCancelAnalysis))
	} else {
		ui.analysisSpinner.Stop()
		ui.analysisSpinner.Hide()
		ui.analysisBtn.SetText(text(KeyRunAnalysis))
	}
	if a.Error != "" {
		ui.planLabel.Importance = widget.DangerImportance
		ui.planLabel.SetText(a.Error)
	} else {
		ui.planLabel.Importance = widget.MediumImportance
		ui.planLabel.SetText(a.Plan)
	}
}

func (ui *RootUI) setRows(rows model.Table) {
	if len(rows) == len(ui.rows) && (len(rows) == 0 || &rows[0] == &ui.rows[0]) {
		return
	}
	ui.rows = rows
	for col := 0; col < rows.Columns(); col++ {
		ui.resultsTable.SetColumnWidth(col, CellMinWidth)
	}
	ui.resultsTable.Refresh()
}

func (ui *RootUI) tableSize() (int, int) {
	return len(ui.rows), ui.rows.Columns()
}

func (ui *RootUI) createCell() fyne.CanvasObject {
	label := widget.NewLabel("")
	label.Truncation = fyne.TextTruncateEllipsis
	return label
}

func (ui *RootUI) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	label := obj.(*widget.Label)
	value := ""
	if id.Row < len(ui.rows) && id.Col < len(ui.rows[id.Row]) {
		value = ui.rows[id.Row][id.Col]
	}
	label.TextStyle = fyne.TextStyle{Bold: id.Row == 0}
	label.SetText(value)
}

// onExport writes the current preview to the export directory
func (ui *RootUI) onExport() {
	if len(ui.rows) == 0 {
		ui.showPopup(ui.localization.GetText(KeyNothingToExport))
		return
	}

	dir := ui.settings.GetExportDirectory()
	format := export.Format(ui.settings.GetExportFormat())
	path, err := export.Export(ui.rows, dir, ui.datasetEntry.Text, format)
	if err != nil {
		ui.logger.Error("export failed", zap.String("dir", dir), zap.Error(err))
		dialog.ShowError(err, ui.window)
		return
	}

	ui.logger.Info("preview exported", zap.String("path", path), zap.Int("rows", len(ui.rows.Body())))
	ui.showExportToast(path)
}

// showExportToast shows an in-app toast with reveal/open actions
func (ui *RootUI) showExportToast(path string) {
	text := ui.localization.GetText

	titleLabel := widget.NewLabel(text(KeyExportCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(path)
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	revealBtn := widget.NewButton(text(KeyReveal), func() {
		ui.openPath(path, platform.OpenFileInManager)
	})
	revealBtn.Importance = widget.HighImportance

	openBtn := widget.NewButton(text(KeyOpen), func() {
		ui.openPath(path, platform.OpenFileWithDefaultApp)
	})

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if toastPopup != nil {
			toastPopup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		container.NewHBox(revealBtn, openBtn),
	)

	toastPopup = widget.NewPopUp(content, ui.window.Canvas())
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	toastPopup.Resize(toastSize)
	toastPopup.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-ToastMargin, ToastMargin))
	toastPopup.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toastPopup.Hide)
	})
}

func (ui *RootUI) openPath(path string, open func(string) error) {
	if err := open(path); err != nil {
		ui.logger.Warn("failed to open export", zap.String("path", path), zap.Error(err))
		ui.showPopup(fmt.Sprintf("%s: %v", ui.localization.GetText(KeyErrorOpeningFile), err))
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.onSettingsSaved).Show()
}

func (ui *RootUI) onSettingsSaved() {
	ui.app.Settings().SetTheme(NewCompactTheme(ui.settings.GetTheme()))
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.refreshUITexts()
	ui.createMenu()

	select {
	case ui.intervals <- ui.settings.GetPollInterval():
	default:
	}
}

// onCopyURL copies the last request URL to the clipboard
func (ui *RootUI) onCopyURL() {
	url := ui.controller.LastURL()
	if url == "" {
		return
	}
	ui.app.Clipboard().SetContent(url)
	ui.showPopup(ui.localization.GetText(KeyURLCopied))
}

func (ui *RootUI) showPopup(message string) {
	widget.ShowPopUp(widget.NewLabel(message), ui.window.Canvas())
}
