package remote

import (
	"context"
	"database/sql"
	"fmt"

	"reportaqui/queue"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// Store is the report side of the remote store: the reports table and the
// evidence records referencing uploaded files.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InsertReport writes the payload fields of a report and returns the
// generated remote sequence number.
func (s *Store) InsertReport(ctx context.Context, r *queue.PendingReport) (int64, error) {
	result, err := s.db.ExecContext(ctx, `INSERT
	  INTO reports (protocol, uf, city, category, title, description, occurred_at,
	                address_text, latitude, longitude, is_anonymous, author_name,
	                author_contact, show_name_publicly, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Protocol, r.UF, r.City, string(r.Category), r.Title, r.Description, r.OccurredAt,
		r.AddressText, nullFloat(r.Latitude), nullFloat(r.Longitude), r.IsAnonymous, r.AuthorName,
		r.AuthorContact, r.ShowNamePublicly, r.CreatedAt)
	if err != nil {
		log.Errorf("Failed to insert report %s: %v", r.Protocol, err)
		return 0, err
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get seq of inserted report %s: %w", r.Protocol, err)
	}
	return seq, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// InsertEvidence records one uploaded attachment against a report.
func (s *Store) InsertEvidence(ctx context.Context, seq int64, url, mimeType, name string) error {
	result, err := s.db.ExecContext(ctx, `INSERT
	  INTO report_evidence (report_seq, url, mime_type, file_name)
	  VALUES (?, ?, ?, ?)`,
		seq, url, mimeType, name)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return fmt.Errorf("expected to affect 1 row, affected %d", rows)
	}
	return nil
}
