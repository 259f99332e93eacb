package handler

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"whiteboard-backend/internal/model"
)

// boardConn is the subset of the websocket connection the gateway writes
// to. *websocket.Conn satisfies it; tests substitute a recording fake.
type boardConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// BoardClient is one connected participant's write side. Writes are
// serialized per connection; the fasthttp websocket conn does not allow
// concurrent writers.
type BoardClient struct {
	UserID  string
	conn    boardConn
	writeMu sync.Mutex
}

func newBoardClient(conn boardConn) *BoardClient {
	return &BoardClient{conn: conn}
}

func (c *BoardClient) send(ev model.BoardEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Board] Failed to marshal %s event: %v", ev.Type, err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[Board] Failed to send %s to client %s: %v", ev.Type, c.UserID, err)
	}
}

// boardRoom is the fan-out side of one room: the set of connected clients.
// Element and history broadcasts go to every member including the sender,
// so all clients converge on the server-stamped timestamps; presence
// broadcasts exclude the subject, who learns its own state directly.
type boardRoom struct {
	clients map[*BoardClient]bool
	mu      sync.RWMutex

	// order serializes apply+fan-out per room. The session alone decides
	// which of two concurrent edits wins; holding order across the apply
	// call and its broadcast keeps the delivery order equal to the apply
	// order, so the winning value is also the last one on the wire.
	order sync.Mutex
}

func newBoardRoom() *boardRoom {
	return &boardRoom{clients: make(map[*BoardClient]bool)}
}

func (r *boardRoom) add(client *BoardClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client] = true
}

func (r *boardRoom) remove(client *BoardClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, client)
}

func (r *boardRoom) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// broadcast delivers the event to every member of the room.
func (r *boardRoom) broadcast(ev model.BoardEvent) {
	for _, client := range r.members() {
		client.send(ev)
	}
}

// broadcastExcept delivers the event to every member except one.
func (r *boardRoom) broadcastExcept(except *BoardClient, ev model.BoardEvent) {
	for _, client := range r.members() {
		if client != except {
			client.send(ev)
		}
	}
}

// members snapshots the client set so sends happen outside the room lock.
func (r *boardRoom) members() []*BoardClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]*BoardClient, 0, len(r.clients))
	for client := range r.clients {
		members = append(members, client)
	}
	return members
}
