package ui

import (
	"strings"

	"fyne.io/fyne/v2/lang"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyDownload          = "download"
	KeyDownloadAll       = "download_all"
	KeyStop              = "stop"
	KeyRemove            = "remove"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyCreators          = "creators"
	KeyVideos            = "videos"
	KeyDownloads         = "downloads"
	KeyAddCreator        = "add_creator"
	KeyEnterMid          = "enter_mid"
	KeyInvalidMid        = "invalid_mid"
	KeySync              = "sync"
	KeySyncing           = "syncing"
	KeyNoNewVideos       = "no_new_videos"
	KeyNewVideosFound    = "new_videos_found"
	KeyLoading           = "loading"
	KeyPrevPage          = "prev_page"
	KeyNextPage          = "next_page"
	KeyPageFormat        = "page_format"
	KeySelectCreator     = "select_creator"
	KeyChooseFolder      = "choose_folder"
	KeyDownloadDirectory = "download_directory"
	KeyMaxParallel       = "max_parallel"
	KeyCookie            = "cookie"
	KeyCookieHint        = "cookie_hint"
	KeySaltMode          = "salt_mode"
	KeySaltModeHint      = "salt_mode_hint"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyDownloadStarted   = "download_started"
	KeyDownloadCompleted = "download_completed"
	KeyAlreadyExists     = "already_exists"
	KeyAlreadyInQueue    = "already_in_queue"
	KeyErrorStoppingTask = "error_stopping_task"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyErrorCreateDir    = "error_create_dir"
	KeyLoginRequired     = "login_required"
	KeyRequestFailed     = "request_failed"
	KeyPathCopied        = "path_copied"
	KeyReveal            = "reveal"
	KeyPlay              = "play"
	KeyPath              = "path"
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

// SetLanguage sets the current language. "system" follows the OS locale.
func (l *Localization) SetLanguage(code string) {
	if code == "system" {
		code = systemLanguage()
	}

	if _, exists := l.texts[code]; exists {
		l.currentLanguage = code
	}
}

func systemLanguage() string {
	locale := lang.SystemLocale().String()
	return strings.ToLower(strings.SplitN(strings.ReplaceAll(locale, "_", "-"), "-", 2)[0])
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if text, found := l.texts[l.currentLanguage][key]; found {
		return text
	}
	if text, found := l.texts["en"][key]; found {
		return text
	}
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
		"zh": "中文",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Bili Audio",
		KeyDownload:          "Download",
		KeyDownloadAll:       "Download all",
		KeyStop:              "Stop",
		KeyRemove:            "Remove",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyCreators:          "Creators",
		KeyVideos:            "Videos",
		KeyDownloads:         "Downloads",
		KeyAddCreator:        "Add",
		KeyEnterMid:          "Creator mid (numeric id)",
		KeyInvalidMid:        "The creator id must be a number",
		KeySync:              "Sync",
		KeySyncing:           "Checking for new videos...",
		KeyNoNewVideos:       "No new videos",
		KeyNewVideosFound:    "New videos found: %d",
		KeyLoading:           "Loading...",
		KeyPrevPage:          "Previous",
		KeyNextPage:          "Next",
		KeyPageFormat:        "Page %d of %d",
		KeySelectCreator:     "Select a creator to list their videos",
		KeyChooseFolder:      "Choose a folder for the audio files",
		KeyDownloadDirectory: "Download Directory",
		KeyMaxParallel:       "Max Parallel Downloads",
		KeyCookie:            "Cookie",
		KeyCookieHint:        "SESSDATA=...; bili_jct=...",
		KeySaltMode:          "Signature Salt",
		KeySaltModeHint:      "Takes effect after restart",
		KeyAutoReveal:        "Reveal files when finished",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved",
		KeyDownloadStarted:   "Download started",
		KeyDownloadCompleted: "Download completed",
		KeyAlreadyExists:     "Already downloaded",
		KeyAlreadyInQueue:    "Already in queue",
		KeyErrorStoppingTask: "Error stopping task",
		KeyErrorOpeningFile:  "Error opening file",
		KeyErrorCreateDir:    "Could not create the folder",
		KeyLoginRequired:     "The request was refused. Check the cookie in Settings",
		KeyRequestFailed:     "Request failed",
		KeyPathCopied:        "Path copied to clipboard",
		KeyReveal:            "open",
		KeyPlay:              "play",
		KeyPath:              "path",
	}

	l.texts["zh"] = map[string]string{
		KeyAppTitle:          "B站音频下载",
		KeyDownload:          "下载",
		KeyDownloadAll:       "全部下载",
		KeyStop:              "停止",
		KeyRemove:            "移除",
		KeySettings:          "设置",
		KeyFile:              "文件",
		KeyLanguage:          "语言",
		KeyCreators:          "UP主",
		KeyVideos:            "视频",
		KeyDownloads:         "下载列表",
		KeyAddCreator:        "添加",
		KeyEnterMid:          "UP主 mid（数字）",
		KeyInvalidMid:        "mid 必须是数字",
		KeySync:              "同步",
		KeySyncing:           "正在检查新视频...",
		KeyNoNewVideos:       "没有新视频",
		KeyNewVideosFound:    "发现新视频：%d",
		KeyLoading:           "加载中...",
		KeyPrevPage:          "上一页",
		KeyNextPage:          "下一页",
		KeyPageFormat:        "第 %d 页，共 %d 页",
		KeySelectCreator:     "选择一个UP主以查看视频",
		KeyChooseFolder:      "选择保存音频的文件夹",
		KeyDownloadDirectory: "下载目录",
		KeyMaxParallel:       "最大并行下载数",
		KeyCookie:            "Cookie",
		KeyCookieHint:        "SESSDATA=...; bili_jct=...",
		KeySaltMode:          "签名盐",
		KeySaltModeHint:      "重启后生效",
		KeyAutoReveal:        "完成后显示文件",
		KeySave:              "保存",
		KeyCancel:            "取消",
		KeyBrowse:            "浏览",
		KeySettingsSaved:     "设置已保存",
		KeyDownloadStarted:   "开始下载",
		KeyDownloadCompleted: "下载完成",
		KeyAlreadyExists:     "已下载",
		KeyAlreadyInQueue:    "已在队列中",
		KeyErrorStoppingTask: "停止任务出错",
		KeyErrorOpeningFile:  "打开文件出错",
		KeyErrorCreateDir:    "无法创建文件夹",
		KeyLoginRequired:     "请求被拒绝，请在设置中检查 Cookie",
		KeyRequestFailed:     "请求失败",
		KeyPathCopied:        "路径已复制",
		KeyReveal:            "打开",
		KeyPlay:              "播放",
		KeyPath:              "路径",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "Bili Аудио",
		KeyDownload:          "Скачать",
		KeyDownloadAll:       "Скачать все",
		KeyStop:              "Стоп",
		KeyRemove:            "Удалить",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyCreators:          "Авторы",
		KeyVideos:            "Видео",
		KeyDownloads:         "Загрузки",
		KeyAddCreator:        "Добавить",
		KeyEnterMid:          "mid автора (число)",
		KeyInvalidMid:        "mid должен быть числом",
		KeySync:              "Синхр.",
		KeySyncing:           "Проверка новых видео...",
		KeyNoNewVideos:       "Новых видео нет",
		KeyNewVideosFound:    "Найдено новых видео: %d",
		KeyLoading:           "Загрузка...",
		KeyPrevPage:          "Назад",
		KeyNextPage:          "Вперёд",
		KeyPageFormat:        "Страница %d из %d",
		KeySelectCreator:     "Выберите автора, чтобы увидеть его видео",
		KeyChooseFolder:      "Выберите папку для аудиофайлов",
		KeyDownloadDirectory: "Папка загрузки",
		KeyMaxParallel:       "Макс. параллельных",
		KeyCookie:            "Cookie",
		KeyCookieHint:        "SESSDATA=...; bili_jct=...",
		KeySaltMode:          "Соль подписи",
		KeySaltModeHint:      "Применится после перезапуска",
		KeyAutoReveal:        "Показывать файл по завершении",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeyBrowse:            "Обзор",
		KeySettingsSaved:     "Настройки сохранены",
		KeyDownloadStarted:   "Загрузка начата",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyAlreadyExists:     "Уже скачано",
		KeyAlreadyInQueue:    "Уже в очереди",
		KeyErrorStoppingTask: "Ошибка остановки задачи",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyErrorCreateDir:    "Не удалось создать папку",
		KeyLoginRequired:     "Запрос отклонён. Проверьте cookie в настройках",
		KeyRequestFailed:     "Ошибка запроса",
		KeyPathCopied:        "Путь скопирован",
		KeyReveal:            "открыть",
		KeyPlay:              "играть",
		KeyPath:              "путь",
	}
}
