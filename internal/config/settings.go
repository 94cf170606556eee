package config

import (
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/platform"
)

// SaltMode selects how the listing signature salt is derived
type SaltMode string

const (
	SaltConcat SaltMode = "concat"
	SaltMixin  SaltMode = "mixin"
)

// Func returns the salt derivation for the mode; unknown modes concatenate.
func (m SaltMode) Func() bili.SaltFunc {
	if m == SaltMixin {
		return bili.MixinSalt
	}
	return bili.ConcatSalt
}

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMaxParallel        = "max_parallel_downloads"
	KeyCookie             = "bili_cookie"
	KeySaltMode           = "wbi_salt_mode"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultMaxParallel        = 2
	DefaultSaltMode           = SaltConcat
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
	DefaultFolderName         = "bili-audio"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download root
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		desktop, err := platform.DesktopDir()
		if err != nil {
			desktop = filepath.Join(".", "downloads")
		}
		defaultDir := filepath.Join(desktop, DefaultFolderName)
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download root
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}
	s.app.Preferences().SetInt(KeyMaxParallel, count)
}

// GetCookie returns the stored authentication cookie header value
func (s *Settings) GetCookie() string {
	return s.app.Preferences().String(KeyCookie)
}

// SetCookie stores the authentication cookie header value
func (s *Settings) SetCookie(cookie string) {
	s.app.Preferences().SetString(KeyCookie, cookie)
}

// GetSaltMode returns the configured signature salt mode
func (s *Settings) GetSaltMode() SaltMode {
	switch mode := SaltMode(s.app.Preferences().String(KeySaltMode)); mode {
	case SaltConcat, SaltMixin:
		return mode
	}
	return DefaultSaltMode
}

// SetSaltMode sets the signature salt mode
func (s *Settings) SetSaltMode(mode SaltMode) {
	s.app.Preferences().SetString(KeySaltMode, string(mode))
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

// GetAutoRevealOnComplete returns whether to auto-reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"zh":     "中文",
		"ru":     "Русский",
	}
}

// Creators returns the creator store backed by the same preferences.
func (s *Settings) Creators() *CreatorStore {
	return NewCreatorStore(s.app.Preferences())
}
