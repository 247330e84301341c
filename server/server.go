package server

import (
	"fmt"
	"time"

	"reportaqui/config"
	"reportaqui/mapview"
	"reportaqui/netwatch"
	"reportaqui/notify"
	"reportaqui/queue"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth        = "/health"
	EndPointMetrics       = "/metrics"
	EndPointReport        = "/report"
	EndPointPending       = "/pending"
	EndPointDeletePending = "/pending/delete"
	EndPointSync          = "/sync"
	EndPointGetFacilities = "/get_facilities"
	EndPointListen        = "/ws"
)

// Server wires the HTTP surface to the queue, sync driver and facility
// source.
type Server struct {
	cfg        *config.Config
	queue      *queue.Queue
	driver     *queue.SyncDriver
	submitter  queue.Submitter
	monitor    *netwatch.Monitor
	facilities mapview.Source
	hub        *notify.Hub
}

func New(cfg *config.Config, q *queue.Queue, driver *queue.SyncDriver,
	submitter queue.Submitter, monitor *netwatch.Monitor,
	facilities mapview.Source, hub *notify.Hub) *Server {
	return &Server{
		cfg:        cfg,
		queue:      q,
		driver:     driver,
		submitter:  submitter,
		monitor:    monitor,
		facilities: facilities,
		hub:        hub,
	}
}

// StartService blocks serving the API.
func (s *Server) StartService() error {
	log.Info("Starting the service...")
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(EndPointHealth, s.Health)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))
	router.POST(EndPointReport, s.Report)
	router.GET(EndPointPending, s.GetPending)
	router.POST(EndPointDeletePending, s.DeletePending)
	router.POST(EndPointSync, s.TriggerSync)
	router.POST(EndPointGetFacilities, s.GetFacilities)
	router.GET(EndPointListen, s.Listen)

	return router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"online":  s.monitor.Online(),
		"pending": s.queue.Len(),
	})
}
