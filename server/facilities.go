package server

import (
	"net/http"

	"reportaqui/mapview"
	"reportaqui/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// GetFacilities serves the facility layer for one viewport. Debouncing lives
// in the client-side fetcher; the server still enforces the zoom gate and
// dedupes the result set.
func (s *Server) GetFacilities(c *gin.Context) {
	var args api.FacilitiesArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in /get_facilities call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}
	if args.Version != "1.0" {
		c.String(http.StatusNotAcceptable, "Bad API version, expecting 1.0.") // 406
		return
	}

	if args.Zoom < mapview.DefaultMinFetchZoom {
		// Zoomed out too far; an empty layer is the documented answer.
		c.JSON(http.StatusOK, []mapview.Facility{})
		return
	}

	facilities, err := s.facilities.FacilitiesInViewport(c.Request.Context(), mapview.Viewport{
		LatMin: args.LatMin,
		LonMin: args.LonMin,
		LatMax: args.LatMax,
		LonMax: args.LonMax,
		Zoom:   args.Zoom,
	})
	if err != nil {
		log.Errorf("Failed to fetch facilities: %v", err)
		c.String(http.StatusInternalServerError, "Failed to fetch facilities.")
		return
	}

	c.JSON(http.StatusOK, mapview.Dedupe(facilities))
}
