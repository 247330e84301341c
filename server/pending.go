package server

import (
	"errors"
	"net/http"

	"reportaqui/server/api"

	"reportaqui/queue"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// GetPending returns the pending-items view: everything captured locally,
// including reports that exhausted their retries.
func (s *Server) GetPending(c *gin.Context) {
	c.JSON(http.StatusOK, api.PendingResponse{Reports: s.queue.Pending()})
}

// DeletePending removes one pending report by id. Removing an unknown id
// still answers OK.
func (s *Server) DeletePending(c *gin.Context) {
	var args api.DeletePendingArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in /pending/delete call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "1.0" {
		c.String(http.StatusNotAcceptable, "Bad API version, expecting 1.0.") // 406
		return
	}
	s.queue.RemovePendingReport(args.Id)
	c.Status(http.StatusOK)
}

// TriggerSync is the manual retry. It answers with the queue depth left after
// the pass; requesting a sync while offline is rejected immediately.
func (s *Server) TriggerSync(c *gin.Context) {
	if err := s.driver.TriggerSync(); err != nil {
		if errors.Is(err, queue.ErrOffline) {
			c.String(http.StatusConflict, "Cannot sync while offline.")
			return
		}
		log.Errorf("Manual sync failed: %v", err)
		c.String(http.StatusInternalServerError, "Sync failed.")
		return
	}
	c.JSON(http.StatusOK, api.SyncResponse{Pending: s.queue.Len()})
}
