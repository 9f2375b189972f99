package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyUsername          = "username"
	KeyPassword          = "password"
	KeyDomain            = "domain"
	KeyDataset           = "dataset"
	KeyQueryPlaceholder  = "query_placeholder"
	KeySaveQuery         = "save_query"
	KeyRunAnalysis       = "run_analysis"
	KeyCancelAnalysis    = "cancel_analysis"
	KeyExport            = "export"
	KeyResults           = "results"
	KeyAnalysis          = "analysis"
	KeySavedQueries      = "saved_queries"
	KeyQueryName         = "query_name"
	KeyQuerySaved        = "query_saved"
	KeyDeleteQuery       = "delete_query"
	KeyExportDirectory   = "export_directory"
	KeyExportFormat      = "export_format"
	KeyPollInterval      = "poll_interval"
	KeyTheme             = "theme"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeyReveal            = "reveal"
	KeyOpen              = "open"
	KeySettingsSaved     = "settings_saved"
	KeyExportCompleted   = "export_completed"
	KeyNothingToExport   = "nothing_to_export"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyMissingConnection = "missing_connection"
	KeyStillFetching     = "still_fetching"
	KeyURLCopied         = "url_copied"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "SoQL Studio",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyUsername:          "Username:",
		KeyPassword:          "Password:",
		KeyDomain:            "Domain:",
		KeyDataset:           "Dataset ID:",
		KeyQueryPlaceholder:  "SELECT * LIMIT 100",
		KeySaveQuery:         "Save Query",
		KeyRunAnalysis:       "Run Query Analysis",
		KeyCancelAnalysis:    "Cancel Analysis",
		KeyExport:            "Export",
		KeyResults:           "Results",
		KeyAnalysis:          "Query Analysis",
		KeySavedQueries:      "Saved queries",
		KeyQueryName:         "Query name",
		KeyQuerySaved:        "Query saved",
		KeyDeleteQuery:       "Delete",
		KeyExportDirectory:   "Export Directory",
		KeyExportFormat:      "Export Format",
		KeyPollInterval:      "Refresh Interval (ms)",
		KeyTheme:             "Theme",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeyReveal:            "Reveal",
		KeyOpen:              "Open",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyExportCompleted:   "Export completed",
		KeyNothingToExport:   "Run a query before exporting",
		KeyErrorOpeningFile:  "Error opening file",
		KeyMissingConnection: "Domain and dataset ID are required",
		KeyStillFetching:     "Wait, we are still fetching...",
		KeyURLCopied:         "URL copied to clipboard",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "SoQL Studio",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyUsername:          "Пользователь:",
		KeyPassword:          "Пароль:",
		KeyDomain:            "Домен:",
		KeyDataset:           "ID набора:",
		KeyQueryPlaceholder:  "SELECT * LIMIT 100",
		KeySaveQuery:         "Сохранить запрос",
		KeyRunAnalysis:       "Анализ запроса",
		KeyCancelAnalysis:    "Отменить анализ",
		KeyExport:            "Экспорт",
		KeyResults:           "Результаты",
		KeyAnalysis:          "Анализ запроса",
		KeySavedQueries:      "Сохранённые запросы",
		KeyQueryName:         "Название запроса",
		KeyQuerySaved:        "Запрос сохранён",
		KeyDeleteQuery:       "Удалить",
		KeyExportDirectory:   "Папка экспорта",
		KeyExportFormat:      "Формат экспорта",
		KeyPollInterval:      "Интервал обновления (мс)",
		KeyTheme:             "Тема",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeyBrowse:            "Обзор",
		KeyReveal:            "Показать",
		KeyOpen:              "Открыть",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyExportCompleted:   "Экспорт завершён",
		KeyNothingToExport:   "Сначала выполните запрос",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyMissingConnection: "Укажите домен и ID набора данных",
		KeyStillFetching:     "Подождите, загрузка ещё идёт...",
		KeyURLCopied:         "URL скопирован в буфер обмена",
	}
}
