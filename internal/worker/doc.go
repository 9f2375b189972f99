package worker

// Package worker provides the long-lived task runtime shared by the UI and
// the CLI. It is started once at init, injected into the services that spawn
// background work, and shut down at teardown.
