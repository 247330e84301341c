package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"reportaqui/metrics"
	"reportaqui/notify"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// KV is the local persistent storage the queue mirrors itself into. The
// production implementation lives in the localstore package.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

const storageKey = "pending_reports"
const schemaVersion = 1

// persistedQueue is the envelope written under storageKey. The version tag
// lets a future shape change discard unreadable old payloads instead of
// crashing on them.
type persistedQueue struct {
	SchemaVersion int              `json:"schema_version"`
	Reports       []*PendingReport `json:"reports"`
}

// Queue owns the pending-report list. All mutations go through it and every
// mutation rewrites the whole list in local storage, so readers never observe
// a partial update.
type Queue struct {
	mu       sync.Mutex
	store    KV
	notifier notify.Notifier
	reports  []*PendingReport
}

func NewQueue(store KV, notifier notify.Notifier) *Queue {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Queue{store: store, notifier: notifier}
}

// Load reads the persisted list. Absent or malformed data yields an empty
// queue; Load never fails to the caller.
func (q *Queue) Load() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.reports = nil
	raw, ok, err := q.store.Get(storageKey)
	if err != nil {
		log.Warnf("Failed to read pending reports, starting empty: %v", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var p persistedQueue
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Warnf("Malformed pending reports payload, starting empty: %v", err)
		return
	}
	if p.SchemaVersion != schemaVersion {
		log.Warnf("Pending reports schema version %d is not %d, discarding persisted queue", p.SchemaVersion, schemaVersion)
		return
	}
	q.reports = p.Reports
	q.updateGaugesLocked()
	log.Infof("Loaded %d pending reports", len(q.reports))
}

// NewPendingReport assigns identity and encodes the attachments of a freshly
// captured report. The submission flow uses it for direct submissions too, so
// online and queued reports carry the same shape.
func NewPendingReport(input ReportInput, files []File) (*PendingReport, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	evidence := make([]EvidenceFile, 0, len(files))
	for _, f := range files {
		if f.Name == "" {
			return nil, fmt.Errorf("attachment without a name")
		}
		evidence = append(evidence, EvidenceFile{
			Name:     f.Name,
			MimeType: f.MimeType,
			Content:  EncodeFileContent(f.Content),
		})
	}

	return &PendingReport{
		ID:           uuid.NewString(),
		Protocol:     GenerateProtocol(),
		ReportInput:  input,
		Evidence:     evidence,
		CreatedAt:    time.Now(),
		SyncAttempts: 0,
	}, nil
}

// AddPendingReport captures a report that could not be submitted online. It
// assigns the protocol and id, encodes the attachments and persists the grown
// list. The returned report carries the protocol the user tracks it by.
func (q *Queue) AddPendingReport(input ReportInput, files []File) (*PendingReport, error) {
	report, err := NewPendingReport(input, files)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	q.reports = append(q.reports, report)
	q.persistLocked()
	q.updateGaugesLocked()
	q.mu.Unlock()

	q.notifier.Notify(notify.Event{
		Kind:     notify.KindReportQueued,
		Message:  fmt.Sprintf("Report saved locally. Protocol %s. It will be sent when you are back online.", report.Protocol),
		Protocol: report.Protocol,
	})

	return report.clone(), nil
}

// RemovePendingReport drops the report with the given id. Removing an unknown
// id is a no-op.
func (q *Queue) RemovePendingReport(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.reports[:0]
	for _, r := range q.reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(q.reports) {
		return
	}
	q.reports = kept
	q.persistLocked()
	q.updateGaugesLocked()
}

// Pending returns a snapshot of the queue, oldest first.
func (q *Queue) Pending() []*PendingReport {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*PendingReport, 0, len(q.reports))
	for _, r := range q.reports {
		out = append(out, r.clone())
	}
	return out
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reports)
}

// reconcile folds the outcome of one sync pass into the live list. Synced ids
// are dropped and failed ids get their attempt bookkeeping carried over, but
// only if still present: reports added or removed while the pass ran are left
// exactly as the user left them.
func (q *Queue) reconcile(synced map[string]bool, failed map[string]*PendingReport) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.reports[:0]
	for _, r := range q.reports {
		if synced[r.ID] {
			continue
		}
		if f, ok := failed[r.ID]; ok {
			r.SyncAttempts = f.SyncAttempts
			r.LastSyncAttempt = f.LastSyncAttempt
		}
		kept = append(kept, r)
	}
	q.reports = kept
	q.persistLocked()
	q.updateGaugesLocked()
}

// persistLocked mirrors the in-memory list to local storage. Persistence
// failures are logged and swallowed: the in-memory state stays authoritative
// for the rest of the page lifetime.
func (q *Queue) persistLocked() {
	p := persistedQueue{SchemaVersion: schemaVersion, Reports: q.reports}
	raw, err := json.Marshal(&p)
	if err != nil {
		log.Errorf("Failed to serialize %d pending reports: %v", len(q.reports), err)
		return
	}
	if err := q.store.Set(storageKey, string(raw)); err != nil {
		log.Errorf("Failed to persist %d pending reports: %v", len(q.reports), err)
	}
}

func (q *Queue) updateGaugesLocked() {
	poisoned := 0
	for _, r := range q.reports {
		if r.Poisoned() {
			poisoned++
		}
	}
	metrics.PendingReports.Set(float64(len(q.reports)))
	metrics.PoisonedReports.Set(float64(poisoned))
}
