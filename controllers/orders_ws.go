package controllers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/velora-shop/velora-backend/models"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is already enforced by the CORS layer; the admin middleware
	// guards this route.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	wsClientsMu sync.Mutex
	wsClients   = make(map[*websocket.Conn]bool)
)

type orderEvent struct {
	Type      string       `json:"type"`
	Order     models.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// GET /admin/orders/ws, live order feed for the admin dashboard.
func OrderEventsSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		wsClientsMu.Lock()
		wsClients[conn] = true
		wsClientsMu.Unlock()

		// drain reads so we notice the close frame
		go func() {
			defer func() {
				wsClientsMu.Lock()
				delete(wsClients, conn)
				wsClientsMu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// broadcastOrderEvent pushes an order event to all connected admin sockets.
// Dead connections are dropped on write failure.
func broadcastOrderEvent(eventType string, order models.Order) {
	event := orderEvent{
		Type:      eventType,
		Order:     order,
		Timestamp: time.Now().UTC(),
	}

	wsClientsMu.Lock()
	defer wsClientsMu.Unlock()
	for conn := range wsClients {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(wsClients, conn)
		}
	}
}
