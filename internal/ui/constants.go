package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconClose    = "×"
	IconCopy     = "📋"
)

// Layout sizing
const (
	WindowWidth  float32 = 1200
	WindowHeight float32 = 860

	CellMinWidth float32 = 120
	LogoSize     float32 = 32
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 320
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// EditorRows is the visible line count of the query editor
const EditorRows = 10
