package notify

import "github.com/apex/log"

// Kind distinguishes the transient banners the UI shows.
type Kind string

const (
	KindReportQueued  Kind = "report_queued"
	KindSyncSucceeded Kind = "sync_succeeded"
	KindSyncFailed    Kind = "sync_failed"
	KindWentOffline   Kind = "went_offline"
	KindBackOnline    Kind = "back_online"
)

// Event is a user-visible notification emitted by the queue and sync driver.
type Event struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Protocol string `json:"protocol,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// Notifier delivers events to the user. Implementations must not block the
// caller; the queue and sync driver call Notify on their own goroutine.
type Notifier interface {
	Notify(e Event)
}

// LogNotifier writes events to the service log. Used as a fallback when no
// client is connected.
type LogNotifier struct{}

func (LogNotifier) Notify(e Event) {
	log.Infof("notification [%s]: %s", e.Kind, e.Message)
}

// Multi fans one event out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(e Event) {
	for _, n := range m {
		n.Notify(e)
	}
}
