// Package config holds the persisted connection file, logger configuration
// read from the environment and UI preferences stored through fyne.
package config
