package queue

import (
	"fmt"
	"time"
)

// Category classifies the public service a report complains about.
type Category string

const (
	CategoryRoads       Category = "roads"
	CategoryLighting    Category = "lighting"
	CategorySanitation  Category = "sanitation"
	CategoryHealth      Category = "health"
	CategoryEducation   Category = "education"
	CategoryTransport   Category = "transport"
	CategorySecurity    Category = "security"
	CategoryEnvironment Category = "environment"
	CategoryOther       Category = "other"
)

// ReportInput carries the payload fields of a report as captured from the
// submission form. Identity and sync bookkeeping are added by the queue.
type ReportInput struct {
	UF               string   `json:"uf"`
	City             string   `json:"city"`
	Category         Category `json:"category"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description"`
	OccurredAt       string   `json:"occurred_at"` // YYYY-MM-DD
	AddressText      string   `json:"address_text,omitempty"`
	Latitude         *float64 `json:"lat,omitempty"`
	Longitude        *float64 `json:"lng,omitempty"`
	IsAnonymous      bool     `json:"is_anonymous"`
	AuthorName       string   `json:"author_name,omitempty"`
	AuthorContact    string   `json:"author_contact,omitempty"`
	ShowNamePublicly bool     `json:"show_name_publicly"`
}

// Validate checks the fields the remote store would reject anyway, so a bad
// report is refused before it is captured.
func (in *ReportInput) Validate() error {
	if in.UF == "" || in.City == "" {
		return fmt.Errorf("uf and city are required")
	}
	if in.Category == "" {
		return fmt.Errorf("category is required")
	}
	if in.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !in.IsAnonymous && (in.AuthorName == "" || in.AuthorContact == "") {
		return fmt.Errorf("author_name and author_contact are required for identified reports")
	}
	return nil
}

// File is a raw attachment handed to the queue by the submission flow.
type File struct {
	Name     string
	MimeType string
	Content  []byte
}

// EvidenceFile is an attachment as stored inside the queue: the content is
// base64-encoded so the whole pending list serializes as text.
type EvidenceFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}

// PendingReport is a report captured while offline or after a failed online
// submission. It lives in the queue until it syncs or the user deletes it.
type PendingReport struct {
	ID       string `json:"id"`
	Protocol string `json:"protocol"`

	ReportInput

	Evidence []EvidenceFile `json:"evidence,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	SyncAttempts    int        `json:"sync_attempts"`
	LastSyncAttempt *time.Time `json:"last_sync_attempt,omitempty"`
}

// Poisoned reports exhausted their retry budget and are skipped by the sync
// driver. They stay visible until the user deletes them.
func (r *PendingReport) Poisoned() bool {
	return r.SyncAttempts >= MaxSyncAttempts
}

func (r *PendingReport) clone() *PendingReport {
	c := *r
	if r.LastSyncAttempt != nil {
		t := *r.LastSyncAttempt
		c.LastSyncAttempt = &t
	}
	if r.Latitude != nil {
		v := *r.Latitude
		c.Latitude = &v
	}
	if r.Longitude != nil {
		v := *r.Longitude
		c.Longitude = &v
	}
	c.Evidence = append([]EvidenceFile(nil), r.Evidence...)
	return &c
}
