package ws

import (
	"github.com/gorilla/websocket"
)

// Client represents a connected floor display
type Client struct {
	ID           string
	OperatorID   string
	TournamentID string
	Conn         *websocket.Conn
	Send         chan []byte
}

// ReadPump handles incoming messages from the client. The only message a
// display sends is which tournament it wants to watch.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.detach(c)
		c.Conn.Close()
	}()

	for {
		var msg struct {
			Type         string `json:"type"`
			TournamentID string `json:"tournament_id"`
		}
		if err := c.Conn.ReadJSON(&msg); err != nil {
			break
		}

		if msg.Type == "watch_tournament" && msg.TournamentID != "" {
			h.watch(c, msg.TournamentID)
		}
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
