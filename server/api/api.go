package api

import "reportaqui/queue"

type FileArg struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"content"` // base64 on the wire
}

type ReportArgs struct {
	Version string `json:"version"` // Must be "1.0"
	queue.ReportInput
	Files []FileArg `json:"files,omitempty"`
}

type ReportResponse struct {
	Protocol string `json:"protocol"`
	Seq      int64  `json:"seq,omitempty"`
	// Queued is true when the report was captured locally instead of being
	// written to the remote store.
	Queued bool `json:"queued"`
	// SkippedEvidence lists attachments that did not make it to the remote
	// store even though the report itself did.
	SkippedEvidence []string `json:"skipped_evidence,omitempty"`
}

type PendingResponse struct {
	Reports []*queue.PendingReport `json:"reports"`
}

type DeletePendingArgs struct {
	Version string `json:"version"` // Must be "1.0"
	Id      string `json:"id"`
}

type SyncResponse struct {
	Pending int `json:"pending"`
}

type FacilitiesArgs struct {
	Version string  `json:"version"` // Must be "1.0"
	LatMin  float64 `json:"latmin"`
	LonMin  float64 `json:"lonmin"`
	LatMax  float64 `json:"latmax"`
	LonMax  float64 `json:"lonmax"`
	Zoom    int     `json:"zoom"`
}
