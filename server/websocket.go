package server

import (
	"net/http"

	"reportaqui/notify"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Listen upgrades the connection and subscribes the client to queue and sync
// notifications.
func (s *Server) Listen(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	client := notify.NewClient(s.hub, conn)
	s.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
