package utility

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub holding active chat connections: Map[SessionID] -> Connection
var (
	Clients   = make(map[string]*websocket.Conn)
	ClientsMu sync.Mutex // Mutex to prevent race conditions
	Upgrader  = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Allow CORS for development
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Register a new chat connection
func RegisterClient(sessionID string, conn *websocket.Conn) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	Clients[sessionID] = conn
	log.Info().Str("session_id", sessionID).Msg("WebSocket Client Connected")
}

// Unregister a client (when they close the tab)
func UnregisterClient(sessionID string) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	if _, ok := Clients[sessionID]; ok {
		delete(Clients, sessionID)
		log.Info().Str("session_id", sessionID).Msg("WebSocket Client Disconnected")
	}
}

// ActiveClients reports how many chat sockets are open.
func ActiveClients() int {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	return len(Clients)
}

// CloseAllClients sends a close frame to every open socket. Called on shutdown.
func CloseAllClients() {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for sessionID, conn := range Clients {
		if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to send WS close frame")
		}
		conn.Close()
		delete(Clients, sessionID)
	}
}
