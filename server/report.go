package server

import (
	"context"
	"net/http"

	"reportaqui/queue"
	"reportaqui/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Report attempts a direct remote submission. When the service is offline or
// the remote write fails, the report is handed to the offline queue instead;
// either way the caller gets a protocol code back.
func (s *Server) Report(c *gin.Context) {
	var args api.ReportArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in /report call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}

	if args.Version != "1.0" {
		log.Errorf("Bad version in /report, expected: 1.0, got: %v", args.Version)
		c.String(http.StatusNotAcceptable, "Bad API version, expecting 1.0.") // 406
		return
	}

	files := make([]queue.File, 0, len(args.Files))
	for _, f := range args.Files {
		files = append(files, queue.File{
			Name:     f.Name,
			MimeType: f.MimeType,
			Content:  f.Content,
		})
	}

	if !s.monitor.Online() {
		s.enqueue(c, args.ReportInput, files)
		return
	}

	report, err := queue.NewPendingReport(args.ReportInput, files)
	if err != nil {
		log.Errorf("Rejecting report: %v", err)
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SyncItemTimeout)
	defer cancel()

	res, err := s.submitter.Submit(ctx, report)
	if err != nil {
		log.Warnf("Direct submission of report %s failed, queueing: %v", report.Protocol, err)
		s.enqueue(c, args.ReportInput, files)
		return
	}

	c.JSON(http.StatusOK, api.ReportResponse{
		Protocol:        report.Protocol,
		Seq:             res.RemoteSeq,
		Queued:          false,
		SkippedEvidence: res.SkippedEvidence,
	})
}

func (s *Server) enqueue(c *gin.Context, input queue.ReportInput, files []queue.File) {
	report, err := s.queue.AddPendingReport(input, files)
	if err != nil {
		log.Errorf("Failed to capture report locally: %v", err)
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, api.ReportResponse{
		Protocol: report.Protocol,
		Queued:   true,
	})
}
