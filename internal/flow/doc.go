package flow

// Package flow connects one background task to a polling consumer. A Flow
// is owned by the UI loop and hands out one Handle per attempt; the task
// uses the Handle to send interim messages, poll for cancellation and report
// exactly one terminal outcome. The consumer drains messages and the outcome
// once per frame without blocking.
