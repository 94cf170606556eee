package ui

// Package ui contains the Fyne desktop interface: the followed creators, their
// video listings, the download queue and the settings dialog. All strings are
// localized via Localization.
