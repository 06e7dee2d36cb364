package server

import (
	"net/http"

	"synapse-console/src/metrics"
	"synapse-console/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()
			metrics.DashboardClients.Set(0)
			return

		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			count := len(s.clients)
			s.clientsMu.Unlock()
			metrics.DashboardClients.Set(float64(count))

			// Full state first, events after
			client.send <- s.controller.Snapshot()

		case client := <-s.unregister:
			s.removeClient(client)

		case client := <-s.resync:
			s.clientsMu.RLock()
			if _, ok := s.clients[client]; ok {
				select {
				case client.send <- s.controller.Snapshot():
				default:
				}
			}
			s.clientsMu.RUnlock()

		case event := <-s.broadcast:
			s.clientsMu.RLock()
			var slow []*Client
			for client := range s.clients {
				select {
				case client.send <- event:
				default:
					slow = append(slow, client)
				}
			}
			s.clientsMu.RUnlock()

			// Prune consumers that cannot keep up rather than block the hub
			for _, client := range slow {
				s.Logger.Warning("Dropping slow dashboard client")
				s.removeClient(client)
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) removeClient(client *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
		close(client.send)
	}
	count := len(s.clients)
	s.clientsMu.Unlock()

	if ok {
		metrics.DashboardClients.Set(float64(count))
	}
}

// -----------------------------------------------------------------------------
// Event fan-out
// -----------------------------------------------------------------------------

// Broadcast queues a store event for every connected client. It never blocks:
// when the queue is full the event is dropped and clients can resync with a
// snapshot command.
func (s *DashboardServer) Broadcast(event models.MEvent) {
	select {
	case <-s.done:
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s event", event.Type)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// requestResync queues a full snapshot for client. The hub owns client.send,
// so the reply goes through it.
func (s *DashboardServer) requestResync(client *Client) {
	select {
	case s.resync <- client:
	case <-s.done:
	}
}
