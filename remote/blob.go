package remote

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// BlobStore keeps uploaded evidence bytes in the remote database and hands
// out the public URLs the evidence records reference. Reports and their
// attachments live side by side, which keeps the store a single dependency.
type BlobStore struct {
	db      *sql.DB
	baseURL string
}

func NewBlobStore(db *sql.DB, baseURL string) *BlobStore {
	return &BlobStore{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores data under path, replacing any previous upload at that path.
func (b *BlobStore) Upload(ctx context.Context, path string, data []byte, mimeType string) error {
	_, err := b.db.ExecContext(ctx, `INSERT
	  INTO evidence_blobs (path, mime_type, content)
	  VALUES (?, ?, ?)
	  ON DUPLICATE KEY UPDATE mime_type=?, content=?`,
		path, mimeType, data, mimeType, data)
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the URL under which an uploaded blob is served.
func (b *BlobStore) PublicURL(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}
