// Package ws pushes low-stock alerts to connected admin clients.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

const defaultLowStockThreshold = 5

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	clientsMu sync.Mutex
	clients   = make(map[*websocket.Conn]bool)
)

// Threshold is the available-stock level at or below which alerts fire.
// Overridable via LOW_STOCK_THRESHOLD.
func Threshold() int {
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultLowStockThreshold
}

// LowStockHandler upgrades the connection and keeps it registered until the
// client goes away.
func LowStockHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	clientsMu.Lock()
	clients[conn] = true
	clientsMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
			break
		}
	}
}

// BroadcastLowStock sends the alerts to every connected client.
func BroadcastLowStock(items []models.LowStockItem) {
	if len(items) == 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("low stock broadcast marshal failed: %v", err)
		return
	}
	clientsMu.Lock()
	defer clientsMu.Unlock()
	for client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(clients, client)
		}
	}
}
