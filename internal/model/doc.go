package model

// Package model defines domain data structures used across the app: fetch
// requests, progress messages, typed error causes, lifecycle states, the
// per-slot result holders and saved query collections. Structures are
// designed for direct binding in the UI and explicit state transitions.
