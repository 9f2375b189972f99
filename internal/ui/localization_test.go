package ui

import "testing"

func TestLocalizationFallbacks(t *testing.T) {
	l := NewLocalization()

	if got := l.GetText(KeyAppTitle); got != "SoQL Studio" {
		t.Errorf("Expected English title, got %s", got)
	}

	l.SetLanguage("ru")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Expected ru, got %s", l.GetCurrentLanguage())
	}
	if got := l.GetText(KeySettings); got != "Настройки" {
		t.Errorf("Expected Russian settings label, got %s", got)
	}

	// Unknown languages are ignored
	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Unknown language should keep ru, got %s", l.GetCurrentLanguage())
	}

	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("System language should resolve to en, got %s", l.GetCurrentLanguage())
	}

	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("Missing key should echo itself, got %s", got)
	}
}

func TestLocalizationComplete(t *testing.T) {
	l := NewLocalization()
	for lang := range l.GetAvailableLanguages() {
		for key := range l.texts["en"] {
			if _, ok := l.texts[lang][key]; !ok {
				t.Errorf("Language %s is missing key %s", lang, key)
			}
		}
	}
}
