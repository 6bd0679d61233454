package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"behavior-backend/internal/imaging"
	"behavior-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn     *websocket.Conn
	clientID string
	send     chan models.WSMessage
}

// wsInbound keeps the payload raw until the message type is known.
type wsInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AnalyzeWS upgrades to a websocket where each FRAME message is an
// independent single-frame analysis. Browsers cannot set headers on a
// websocket handshake, so the key is also accepted as a query parameter.
func (h *Handler) AnalyzeWS(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		key = r.URL.Query().Get("api_key")
	}
	if key == "" {
		h.enableCORS(w)
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required. Please provide X-API-Key header.")
		return
	}
	if !h.keys.Validate(key) {
		h.enableCORS(w)
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired API key.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = "client-" + time.Now().Format("20060102150405.000000000")
	}

	client := &wsClient{
		conn:     conn,
		clientID: clientID,
		send:     make(chan models.WSMessage, 256),
	}

	h.wsMu.Lock()
	h.wsClients[clientID] = client
	h.wsMu.Unlock()
	h.metrics.IncrementWSConnections()

	h.logger.Info("websocket client connected", "client_id", clientID)

	go h.writePump(client)

	client.send <- models.WSMessage{
		Type:      "WELCOME",
		ClientID:  clientID,
		Timestamp: time.Now().Unix(),
		Payload: map[string]interface{}{
			"message": "Connected to behavior analysis service",
		},
	}

	// readPump owns the connection lifetime; all sends happen from it, so
	// it can safely close the send channel on exit.
	h.readPump(client)
}

func (h *Handler) readPump(client *wsClient) {
	defer func() {
		h.wsMu.Lock()
		delete(h.wsClients, client.clientID)
		h.wsMu.Unlock()
		h.metrics.DecrementWSConnections()

		close(client.send)
		client.conn.Close()
		h.logger.Info("websocket client disconnected", "client_id", client.clientID)
	}()

	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg wsInbound
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "client_id", client.clientID, "err", err)
			}
			return
		}
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		h.metrics.IncrementWSMessages()

		switch msg.Type {
		case "PING":
			client.send <- models.WSMessage{
				Type:      "PONG",
				ClientID:  client.clientID,
				Timestamp: time.Now().Unix(),
			}

		case "FRAME":
			client.send <- h.handleWSFrame(client, msg.Payload)

		default:
			client.send <- h.wsError(client, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

// handleWSFrame runs one FRAME message through the same decode/analyze path
// as the REST endpoints. Frames are independent; no state carries between
// messages.
func (h *Handler) handleWSFrame(client *wsClient, payload json.RawMessage) models.WSMessage {
	var frameReq models.WSFramePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &frameReq); err != nil {
			return h.wsError(client, "Invalid frame payload")
		}
	}
	if frameReq.Image == "" {
		return h.wsError(client, "Missing 'image' field in request")
	}

	frame, err := imaging.DecodeBase64(frameReq.Image)
	if err != nil {
		return h.wsError(client, err.Error())
	}

	start := time.Now()
	result, err := h.engine.ProcessFrame(context.Background(), frame)
	if err != nil {
		h.metrics.IncrementErrors()
		h.logger.Error("frame processing failed", "client_id", client.clientID, "err", err)
		return h.wsError(client, fmt.Sprintf("Error processing frame: %s", err))
	}
	h.metrics.RecordLatency(time.Since(start))
	h.metrics.IncrementFrames()

	return models.WSMessage{
		Type:      "ANALYSIS",
		ClientID:  client.clientID,
		Timestamp: time.Now().Unix(),
		Payload:   BuildResponse(result),
	}
}

func (h *Handler) wsError(client *wsClient, message string) models.WSMessage {
	return models.WSMessage{
		Type:      "ERROR",
		ClientID:  client.clientID,
		Timestamp: time.Now().Unix(),
		Payload:   map[string]string{"error": message},
	}
}

func (h *Handler) writePump(client *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseWebSockets force-closes every live connection; called on shutdown.
func (h *Handler) CloseWebSockets() {
	h.wsMu.Lock()
	clients := make([]*wsClient, 0, len(h.wsClients))
	for _, client := range h.wsClients {
		clients = append(clients, client)
	}
	h.wsMu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}
