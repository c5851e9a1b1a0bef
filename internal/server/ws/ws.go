package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pokerclub-platform/internal/auth"
	"pokerclub-platform/internal/notify"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Upgrader configures the WebSocket upgrader
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub connects floor displays to the notification broker. Each connected
// client picks one tournament to watch; the hub keeps a single broker
// subscription per tournament and fans events out to its watchers.
type Hub struct {
	broker *notify.Broker
	auth   *auth.Service

	mu      sync.RWMutex
	clients map[string]*Client
	feeds   map[string]*feed
}

type feed struct {
	sub      *notify.Subscription
	watchers int
}

func NewHub(broker *notify.Broker, authService *auth.Service) *Hub {
	return &Hub{
		broker:  broker,
		auth:    authService,
		clients: make(map[string]*Client),
		feeds:   make(map[string]*feed),
	}
}

// HandleWebSocket upgrades the HTTP connection and starts the client pumps.
// The token travels as a query parameter because browsers cannot set headers
// on WebSocket connects.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	operatorID, err := h.auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := &Client{
		ID:         uuid.New().String(),
		OperatorID: operatorID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	go client.WritePump()
	go client.ReadPump(h)
}

// watch switches the client to a tournament feed, starting a broker
// subscription if this is the tournament's first watcher.
func (h *Hub) watch(c *Client, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.TournamentID == tournamentID {
		return
	}
	h.leaveLocked(c)
	c.TournamentID = tournamentID

	f, ok := h.feeds[tournamentID]
	if !ok {
		f = &feed{sub: h.broker.Subscribe(tournamentID)}
		h.feeds[tournamentID] = f
		go h.pump(tournamentID, f.sub)
	}
	f.watchers++
}

// detach removes a disconnected client and tears down its feed if it was the
// last watcher.
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.ID)
	h.leaveLocked(c)
}

func (h *Hub) leaveLocked(c *Client) {
	if c.TournamentID == "" {
		return
	}
	if f, ok := h.feeds[c.TournamentID]; ok {
		f.watchers--
		if f.watchers <= 0 {
			h.broker.Unsubscribe(f.sub)
			delete(h.feeds, c.TournamentID)
		}
	}
	c.TournamentID = ""
}

// pump forwards broker events for one tournament to all of its watchers.
// It exits when the subscription is closed.
func (h *Hub) pump(tournamentID string, sub *notify.Subscription) {
	for ev := range sub.C {
		data, err := json.Marshal(WSMessage{Type: ev.Type, Payload: ev})
		if err != nil {
			continue
		}

		h.mu.RLock()
		for _, client := range h.clients {
			if client.TournamentID != tournamentID {
				continue
			}
			select {
			case client.Send <- data:
			default:
				// Slow display; drop rather than stall the feed.
			}
		}
		h.mu.RUnlock()
	}
}
