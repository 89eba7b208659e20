package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub mantiene las conexiones agrupadas por usuario. Un mismo usuario puede
// tener varias pestañas o dispositivos conectados.
type Hub struct {
	Users map[string]map[*websocket.Conn]*Client
	Mutex sync.RWMutex
}

var H = Hub{
	Users: make(map[string]map[*websocket.Conn]*Client),
}

func (h *Hub) RegisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Users[userID]; !ok {
		h.Users[userID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Users[userID][conn] = client

	// La lectura queda a cargo del handler; aquí solo arranca el escritor
	go h.writePump(client)
}

func (h *Hub) UnregisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Users[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Users, userID)
		}
	}
}

// BroadcastToUser envía el mensaje a todas las conexiones del usuario.
// Si el buffer de un cliente está lleno, el mensaje se descarta para él.
func (h *Hub) BroadcastToUser(userID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Users[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// SendBadgeUpdate empuja el contador de notificaciones sin leer.
func SendBadgeUpdate(userID string, count int64) {
	payload := map[string]interface{}{
		"type":         "badge_update",
		"unread_count": count,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("Error en JSON marshal:", err)
		return
	}
	H.BroadcastToUser(userID, data)
}

func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// GetStats expone cuántos usuarios y conexiones hay (para /health).
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	conns := 0
	for _, clients := range h.Users {
		conns += len(clients)
	}
	return map[string]int{
		"users":       len(h.Users),
		"connections": conns,
	}
}
