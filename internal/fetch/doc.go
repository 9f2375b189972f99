// Package fetch implements the streaming fetch pipeline. A task issues an
// authenticated GET, streams the body chunk by chunk while reporting progress
// through a flow handle, honours cooperative cancellation and turns the CSV
// payload into a bounded preview table.
package fetch
