package ui

import (
	"errors"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/library"
)

// refreshSavedQueries lists the saved queries of the current domain
func (ui *RootUI) refreshSavedQueries() {
	if ui.savedSelect == nil || ui.library == nil {
		return
	}

	var names []string
	for _, q := range ui.library.List(ui.connection().Domain) {
		names = append(names, q.Name)
	}
	ui.savedSelect.Options = names
	if ui.savedSelect.Selected != "" {
		found := false
		for _, n := range names {
			if n == ui.savedSelect.Selected {
				found = true
				break
			}
		}
		if !found {
			ui.savedSelect.ClearSelected()
		}
	}
	ui.savedSelect.Refresh()
}

// onSavedQuerySelected loads a saved query into the editor
func (ui *RootUI) onSavedQuerySelected(name string) {
	if name == "" || ui.library == nil {
		return
	}
	q, err := ui.library.Find(ui.connection().Domain, name)
	if err != nil {
		ui.logger.Warn("saved query not found", zap.String("name", name), zap.Error(err))
		return
	}
	ui.datasetEntry.SetText(q.DatasetID)
	ui.queryEditor.SetText(q.Query)
}

// onSaveQuery asks for a name and stores the editor under the current domain
func (ui *RootUI) onSaveQuery() {
	if ui.library == nil {
		return
	}
	conn := ui.connection()
	if !ui.validConnection(conn) {
		return
	}

	text := ui.localization.GetText
	nameEntry := widget.NewEntry()
	nameEntry.SetText(ui.savedSelect.Selected)
	nameEntry.Validator = func(s string) error {
		if s == "" {
			return library.ErrEmptyName
		}
		return nil
	}

	items := []*widget.FormItem{widget.NewFormItem(text(KeyQueryName), nameEntry)}
	dialog.ShowForm(text(KeySaveQuery), text(KeySave), text(KeyCancel), items, func(confirmed bool) {
		if !confirmed {
			return
		}
		q, err := ui.library.SaveQuery(conn.Domain, nameEntry.Text, conn.Dataset, conn.Query)
		if err != nil {
			ui.logger.Error("failed to save query", zap.Error(err))
			dialog.ShowError(err, ui.window)
			return
		}
		ui.refreshSavedQueries()
		ui.savedSelect.SetSelected(q.Name)
		ui.showPopup(text(KeyQuerySaved))
	}, ui.window)
}

// onDeleteQuery removes the selected saved query after confirmation
func (ui *RootUI) onDeleteQuery() {
	name := ui.savedSelect.Selected
	if name == "" || ui.library == nil {
		return
	}
	domain := ui.connection().Domain

	text := ui.localization.GetText
	dialog.ShowConfirm(text(KeyDeleteQuery), name+"?", func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := ui.library.Remove(domain, name); err != nil && !errors.Is(err, library.ErrQueryNotFound) {
			dialog.ShowError(err, ui.window)
			return
		}
		ui.savedSelect.ClearSelected()
		ui.refreshSavedQueries()
	}, ui.window)
}
