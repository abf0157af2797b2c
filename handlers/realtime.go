// handlers/realtime.go - Live vote broadcast over WebSocket group rooms
package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const sendBufferSize = 64

// wsMessage is the wire format in both directions.
type wsMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inboundMessage defers payload decoding until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// wsClient is one connected dashboard or voting page. Outbound messages go
// through a buffered channel; when the buffer is full the message is dropped
// rather than blocking the hub. Clients re-fetch authoritative stats over
// HTTP, so a dropped push is recoverable.
type wsClient struct {
	conn    *websocket.Conn
	send    chan wsMessage
	groupID uint
	mu      sync.Mutex
}

func (c *wsClient) sendMessage(msgType string, payload interface{}) {
	select {
	case c.send <- wsMessage{Type: msgType, Payload: payload}:
	default:
		log.Printf("⚠️ Send buffer full, dropping %s message", msgType)
	}
}

var (
	roomsMu sync.RWMutex
	rooms   = make(map[uint]map[*wsClient]bool)
)

func joinRoom(client *wsClient, groupID uint) {
	roomsMu.Lock()
	defer roomsMu.Unlock()

	// One room per connection; joining another group leaves the previous one.
	if client.groupID != 0 {
		removeFromRoomLocked(client, client.groupID)
	}

	if rooms[groupID] == nil {
		rooms[groupID] = make(map[*wsClient]bool)
	}
	rooms[groupID][client] = true
	client.groupID = groupID
}

func leaveRoom(client *wsClient) {
	roomsMu.Lock()
	defer roomsMu.Unlock()
	if client.groupID != 0 {
		removeFromRoomLocked(client, client.groupID)
		client.groupID = 0
	}
}

func removeFromRoomLocked(client *wsClient, groupID uint) {
	if members, ok := rooms[groupID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(rooms, groupID)
		}
	}
}

// BroadcastVoteUpdate pushes a vote_updated event to every subscriber of the
// group's room. Fire-and-forget; subscribers of other rooms never see it.
func BroadcastVoteUpdate(groupID uint, payload interface{}) {
	roomsMu.RLock()
	members := make([]*wsClient, 0, len(rooms[groupID]))
	for client := range rooms[groupID] {
		members = append(members, client)
	}
	roomsMu.RUnlock()

	for _, client := range members {
		client.sendMessage("vote_updated", payload)
	}
}

// RoomSize reports the current subscriber count of a group's room.
func RoomSize(groupID uint) int {
	roomsMu.RLock()
	defer roomsMu.RUnlock()
	return len(rooms[groupID])
}

// WebSocketUpgrade gates /ws to real upgrade requests.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// VoteChannel handles one WebSocket connection: join_group subscribes the
// connection to a group's room, vote_update relays a payload to the room as
// vote_updated.
var VoteChannel = websocket.New(func(conn *websocket.Conn) {
	client := &wsClient{
		conn: conn,
		send: make(chan wsMessage, sendBufferSize),
	}

	done := make(chan struct{})
	go writePump(client, done)

	defer func() {
		leaveRoom(client)
		close(done)
		conn.Close()
	}()

	client.sendMessage("connected", fiber.Map{"message": "连接成功"})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.sendMessage("error", fiber.Map{"error": "Invalid message"})
			continue
		}
		handleRealtimeMessage(client, msg)
	}
})

func writePump(client *wsClient, done chan struct{}) {
	for {
		select {
		case msg := <-client.send:
			client.mu.Lock()
			err := client.conn.WriteJSON(msg)
			client.mu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func handleRealtimeMessage(client *wsClient, msg inboundMessage) {
	switch msg.Type {
	case "join_group":
		var payload struct {
			GroupID uint `json:"group_id"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.GroupID == 0 {
			client.sendMessage("error", fiber.Map{"error": "group_id is required"})
			return
		}
		joinRoom(client, payload.GroupID)
		client.sendMessage("joined_group", fiber.Map{"group_id": payload.GroupID})

	case "vote_update":
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			client.sendMessage("error", fiber.Map{"error": "Invalid payload"})
			return
		}
		groupID, ok := payload["group_id"].(float64)
		if !ok || groupID <= 0 {
			client.sendMessage("error", fiber.Map{"error": "group_id is required"})
			return
		}
		BroadcastVoteUpdate(uint(groupID), payload)

	case "ping":
		client.sendMessage("pong", fiber.Map{})

	default:
		client.sendMessage("error", fiber.Map{"error": "Unknown message type"})
	}
}
