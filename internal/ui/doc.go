package ui

// Package ui contains the Fyne-based desktop user interface for the studio.
// It wires connection fields and the query editor to the studio controller,
// drains fetch progress on a frame ticker and renders the result preview,
// query analysis and saved queries. All UI strings are localized via Localization.
