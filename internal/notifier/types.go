package notifier

import "time"

// Config controls pacing and retry of deliveries.
//
// RatePerSec 0 selects the default rate; a negative value disables pacing.
type Config struct {
	RatePerSec    int
	RetryMax      int
	RetryBase     time.Duration
	RetryMaxDelay time.Duration
	SendTimeout   time.Duration
	HistorySize   int
}

type HistoryItem struct {
	At      time.Time
	Channel string
	Text    string
}

// Result summarises one Deliver call.
type Result struct {
	Sent    int
	Skipped int
}

// NotificationEvent is emitted on the event bus for every delivered or failed chunk.
type NotificationEvent struct {
	Channel  string    `json:"channel"`
	Chunk    int       `json:"chunk"`
	Total    int       `json:"total"`
	Attempts int       `json:"attempts"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}

const (
	EventSent   = "notifier.sent"
	EventFailed = "notifier.failed"
)
