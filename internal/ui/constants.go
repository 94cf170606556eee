package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconError    = "❌"
	IconSkip     = "⏭"
	IconConvert  = "♫"
	IconPending  = "⏳"
	IconStopped  = "⏹"
	IconSync     = "⟳"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 96
	SpeedLabelWidth   float32 = 120
	PercentLabelWidth float32 = 48

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 64

	CreatorsPanelWidth float32 = 240
	WindowWidth        float32 = 1000
	WindowHeight       float32 = 640
)

// Timing
const (
	RequestTimeout   = 20 * time.Second
	NotificationHide = 5 * time.Second
)
