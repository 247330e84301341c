package remote

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"reportaqui/queue"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// hookTimeout bounds the post-sync hooks, which run detached from the
// submission so a slow mail provider or broker cannot stall a sync pass.
const hookTimeout = 30 * time.Second

// Publisher hands a synced report to the analysis pipeline. Best-effort.
type Publisher interface {
	Publish(message interface{}) error
}

// Forwarder mails a synced report to the responsible agency. Best-effort.
type Forwarder interface {
	ForwardReport(ctx context.Context, r *queue.PendingReport, seq int64) error
}

// SyncedReport is the message published for downstream analysis after a
// report reaches the remote store.
type SyncedReport struct {
	Seq         int64          `json:"seq"`
	Protocol    string         `json:"protocol"`
	UF          string         `json:"uf"`
	City        string         `json:"city"`
	Category    queue.Category `json:"category"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description"`
	Latitude    *float64       `json:"lat,omitempty"`
	Longitude   *float64       `json:"lng,omitempty"`
}

// Submitter performs the single-item sync: insert the report, then upload
// each attachment and record it as evidence. A failed report insert fails the
// whole item; a failed attachment is logged and skipped so the report can
// sync with some evidence missing.
type Submitter struct {
	store *Store
	blobs *BlobStore

	// Optional post-sync hooks. Failures here never fail the item.
	Publisher Publisher
	Forwarder Forwarder
}

func NewSubmitter(store *Store, blobs *BlobStore) *Submitter {
	return &Submitter{store: store, blobs: blobs}
}

func (s *Submitter) Submit(ctx context.Context, r *queue.PendingReport) (*queue.SubmitResult, error) {
	seq, err := s.store.InsertReport(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report %s: %w", r.Protocol, err)
	}

	var skipped []string
	for _, f := range r.Evidence {
		if err := s.uploadEvidence(ctx, seq, f); err != nil {
			log.Warnf("Skipping evidence %q of report %s: %v", f.Name, r.Protocol, err)
			skipped = append(skipped, f.Name)
		}
	}

	// Detached: the item's outcome is settled, the hooks must not extend it.
	go s.afterSync(r, seq)

	return &queue.SubmitResult{RemoteSeq: seq, SkippedEvidence: skipped}, nil
}

func (s *Submitter) uploadEvidence(ctx context.Context, seq int64, f queue.EvidenceFile) error {
	data, err := queue.DecodeFileContent(f.Content)
	if err != nil {
		return fmt.Errorf("failed to decode content: %w", err)
	}

	// Fresh random name, original extension preserved.
	path := fmt.Sprintf("reports/%d/%s%s", seq, uuid.NewString(), filepath.Ext(f.Name))
	if err := s.blobs.Upload(ctx, path, data, f.MimeType); err != nil {
		return err
	}

	url := s.blobs.PublicURL(path)
	if err := s.store.InsertEvidence(ctx, seq, url, f.MimeType, f.Name); err != nil {
		return fmt.Errorf("failed to record evidence: %w", err)
	}
	return nil
}

func (s *Submitter) afterSync(r *queue.PendingReport, seq int64) {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	if s.Publisher != nil {
		msg := SyncedReport{
			Seq:         seq,
			Protocol:    r.Protocol,
			UF:          r.UF,
			City:        r.City,
			Category:    r.Category,
			Title:       r.Title,
			Description: r.Description,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		}
		if err := s.Publisher.Publish(msg); err != nil {
			log.Errorf("Failed to publish report %d for analysis: %v", seq, err)
		}
	}
	if s.Forwarder != nil {
		if err := s.Forwarder.ForwardReport(ctx, r, seq); err != nil {
			log.Errorf("Failed to forward report %d to agency contacts: %v", seq, err)
		}
	}
}
