package model

import "time"

// IntentKind classifies a notification intent.
type IntentKind string

const (
	IntentCIFailed     IntentKind = "ci_failed"
	IntentChecksPassed IntentKind = "checks_passed"
	IntentNoLongerOpen IntentKind = "no_longer_open"
)

// NotificationIntent is the content of one notification the watcher wants shown.
// Delivery is up to the notification layer.
type NotificationIntent struct {
	Kind  IntentKind
	PR    Identity
	Title string
	Body  string
	URL   string // Empty when no PR data is available (e.g. the PR disappeared).
}

// NotificationRecord is a delivered intent kept in history.
type NotificationRecord struct {
	ID        int64
	Intent    NotificationIntent
	CreatedAt time.Time
}
