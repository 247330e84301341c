package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reportaqui/metrics"
	"reportaqui/notify"

	"github.com/apex/log"
)

// MaxSyncAttempts is the retry budget per pending report. A report that fails
// this many times is poisoned: kept for manual deletion, never retried.
const MaxSyncAttempts = 5

// DefaultItemTimeout bounds one remote submission so a hung request cannot
// stall the pass forever. A timeout counts as a transient failure.
const DefaultItemTimeout = 30 * time.Second

// ErrOffline rejects a manual sync request made while disconnected.
var ErrOffline = errors.New("cannot sync while offline")

// SubmitResult reports the outcome of one successful remote submission.
type SubmitResult struct {
	RemoteSeq int64
	// SkippedEvidence lists attachments that failed to upload. The report
	// itself still synced; the UI uses this to tell the user which evidence
	// is missing.
	SkippedEvidence []string
}

// Submitter pushes one pending report to the remote store. The production
// implementation lives in the remote package.
type Submitter interface {
	Submit(ctx context.Context, r *PendingReport) (*SubmitResult, error)
}

// SyncDriver pushes eligible pending reports to the remote store, one pass at
// a time. A pass is triggered by a reconnect or a manual retry; triggers that
// arrive mid-pass are dropped, not queued.
type SyncDriver struct {
	queue       *Queue
	submitter   Submitter
	notifier    notify.Notifier
	itemTimeout time.Duration

	mu      sync.Mutex
	online  bool
	syncing bool
}

func NewSyncDriver(q *Queue, s Submitter, n notify.Notifier, itemTimeout time.Duration) *SyncDriver {
	if n == nil {
		n = notify.LogNotifier{}
	}
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}
	return &SyncDriver{
		queue:       q,
		submitter:   s,
		notifier:    n,
		itemTimeout: itemTimeout,
		// Assume connectivity until the reachability monitor says otherwise,
		// so the first observation at boot is not announced as a transition.
		online: true,
	}
}

// Online reports the last observed reachability state.
func (d *SyncDriver) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

// SetOnline feeds a reachability transition into the driver. Going from
// offline to online starts an automatic sync pass when pending reports exist.
// Repeated notifications of the same state are no-ops.
func (d *SyncDriver) SetOnline(online bool) {
	d.mu.Lock()
	changed := d.online != online
	d.online = online
	d.mu.Unlock()
	if !changed {
		return
	}

	if !online {
		d.notifier.Notify(notify.Event{
			Kind:    notify.KindWentOffline,
			Message: "You are offline. New reports will be saved locally.",
		})
		return
	}

	d.notifier.Notify(notify.Event{
		Kind:    notify.KindBackOnline,
		Message: "Back online. Syncing saved reports.",
	})
	if d.queue.Len() > 0 {
		go d.runPass()
	}
}

// TriggerSync is the user-initiated retry. It fails immediately when offline;
// if a pass is already running the trigger is silently dropped.
func (d *SyncDriver) TriggerSync() error {
	if !d.Online() {
		return ErrOffline
	}
	d.runPass()
	return nil
}

// begin claims the single sync slot. It refuses when a pass is running, when
// offline, or when there is nothing to sync.
func (d *SyncDriver) begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.syncing || !d.online || d.queue.Len() == 0 {
		return false
	}
	d.syncing = true
	return true
}

func (d *SyncDriver) end() {
	d.mu.Lock()
	d.syncing = false
	d.mu.Unlock()
}

// Syncing reports whether a pass is currently in flight.
func (d *SyncDriver) Syncing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syncing
}

// failureMessage words the aggregate failure banner. Poisoned reports are out
// of retries, so a queue holding only those must not promise another attempt.
func failureMessage(failures, poisoned int) string {
	switch {
	case poisoned == 0:
		return fmt.Sprintf("%d saved report(s) could not be sent. They will be retried.", failures)
	case poisoned == failures:
		return fmt.Sprintf("%d saved report(s) exhausted their retries. Delete them or file them again.", failures)
	default:
		return fmt.Sprintf("%d saved report(s) could not be sent: %d will be retried, %d exhausted their retries.",
			failures, failures-poisoned, poisoned)
	}
}

// runPass walks the pending list oldest-first and attempts each eligible
// report once. Failures are isolated per item; the final reconciliation is the
// only mutation other components can observe.
func (d *SyncDriver) runPass() {
	if !d.begin() {
		return
	}
	defer d.end()

	start := time.Now()
	items := d.queue.Pending()
	synced := make(map[string]bool)
	failed := make(map[string]*PendingReport)
	successes, failures, poisoned := 0, 0, 0

	for _, item := range items {
		if item.Poisoned() {
			failures++
			poisoned++
			metrics.SyncReportsTotal.WithLabelValues("poisoned").Inc()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.itemTimeout)
		res, err := d.submitter.Submit(ctx, item.clone())
		cancel()

		if err != nil {
			now := time.Now()
			item.SyncAttempts++
			item.LastSyncAttempt = &now
			failed[item.ID] = item
			failures++
			metrics.SyncReportsTotal.WithLabelValues("failure").Inc()
			log.Warnf("Sync of report %s failed (attempt %d/%d): %v",
				item.Protocol, item.SyncAttempts, MaxSyncAttempts, err)
			if item.Poisoned() {
				log.Errorf("Report %s exhausted its sync retries and is kept for manual deletion", item.Protocol)
			}
			continue
		}

		synced[item.ID] = true
		successes++
		metrics.SyncReportsTotal.WithLabelValues("success").Inc()
		if len(res.SkippedEvidence) > 0 {
			log.Warnf("Report %s synced without %d evidence files: %v",
				item.Protocol, len(res.SkippedEvidence), res.SkippedEvidence)
		}
		log.Infof("Report %s synced as remote seq %d", item.Protocol, res.RemoteSeq)
	}

	// Fold the outcome into the live list instead of overwriting it: reports
	// the user added or deleted while the pass ran must not be lost or
	// resurrected by a stale snapshot.
	d.queue.reconcile(synced, failed)
	metrics.SyncPassesTotal.Inc()
	metrics.SyncPassDurationSeconds.Observe(time.Since(start).Seconds())

	if successes > 0 {
		d.notifier.Notify(notify.Event{
			Kind:    notify.KindSyncSucceeded,
			Message: fmt.Sprintf("%d saved report(s) were sent.", successes),
			Count:   successes,
		})
	} else if failures > 0 {
		d.notifier.Notify(notify.Event{
			Kind:    notify.KindSyncFailed,
			Message: failureMessage(failures, poisoned),
			Count:   failures,
		})
	}
}
