package ui

import "testing"

func TestLocalization_FallbackToEnglish(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("zh")

	if l.GetCurrentLanguage() != "zh" {
		t.Fatalf("Expected zh, got %s", l.GetCurrentLanguage())
	}
	if got := l.GetText(KeyDownload); got != "下载" {
		t.Errorf("Expected Chinese text, got %q", got)
	}

	delete(l.texts["zh"], KeyDownload)
	if got := l.GetText(KeyDownload); got != "Download" {
		t.Errorf("Expected English fallback, got %q", got)
	}
	if got := l.GetText("missing_key"); got != "missing_key" {
		t.Errorf("Expected key fallback, got %q", got)
	}
}

func TestLocalization_UnknownLanguageIgnored(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("ru")
	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Errorf("Expected language to stay ru, got %s", l.GetCurrentLanguage())
	}
}

func TestLocalization_AllLanguagesComplete(t *testing.T) {
	l := NewLocalization()
	for code := range l.GetAvailableLanguages() {
		texts, ok := l.texts[code]
		if !ok {
			t.Errorf("No texts for %s", code)
			continue
		}
		for key := range l.texts["en"] {
			if _, ok := texts[key]; !ok {
				t.Errorf("%s is missing %s", code, key)
			}
		}
	}
}
