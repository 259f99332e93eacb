package handler

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"whiteboard-backend/internal/board"
	"whiteboard-backend/internal/metrics"
	"whiteboard-backend/internal/model"
)

// BoardWSHandler binds the room sync engine to the WebSocket transport:
// it resolves inbound events to a room session, applies them, and fans the
// resulting events out through the room's client set.
type BoardWSHandler struct {
	registry *board.Registry
	rooms    map[string]*boardRoom
	mu       sync.Mutex
}

// NewBoardWSHandler creates the handler on top of an explicit registry.
func NewBoardWSHandler(registry *board.Registry) *BoardWSHandler {
	return &BoardWSHandler{
		registry: registry,
		rooms:    make(map[string]*boardRoom),
	}
}

// joinRoom returns the room's client set with the client already a member,
// creating the set on first use. Membership insertion happens under the
// handler lock shared with dropIfEmpty, so a client can never attach to a
// set that a concurrent disconnect is about to drop.
func (h *BoardWSHandler) joinRoom(roomID string, client *BoardClient) *boardRoom {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = newBoardRoom()
		h.rooms[roomID] = room
	}
	room.add(client)
	return room
}

// dropIfEmpty removes the client set once the last connection is gone. The
// session itself stays in the registry until the idle janitor evicts it.
// The size check and the delete run under the same lock as joinRoom's
// insertion, so an in-flight join keeps the set alive.
func (h *BoardWSHandler) dropIfEmpty(roomID string, room *boardRoom) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room.size() == 0 {
		delete(h.rooms, roomID)
	}
}

// HandleWebSocket runs one connection's read loop. The connection may join
// at most one room; events arriving before a successful join are dropped.
// No inbound message can fault the room: malformed frames are skipped and
// unknown references degrade to no-ops inside the session.
func (h *BoardWSHandler) HandleWebSocket(c *websocket.Conn) {
	client := newBoardClient(c)

	metrics.ConnectedClients.Inc()
	defer metrics.ConnectedClients.Dec()

	var (
		session *board.Session
		room    *boardRoom
		roomID  string
	)

	// Transport-level disconnect is the only leave trigger; it removes
	// presence and never rolls back prior edits.
	defer func() {
		c.Close()
		if session == nil {
			return
		}
		room.remove(client)
		room.order.Lock()
		session.Leave(client.UserID)
		room.broadcast(model.BoardEvent{
			Type:   model.EventUserLeft,
			RoomID: roomID,
			UserID: client.UserID,
		})
		room.order.Unlock()
		h.dropIfEmpty(roomID, room)
		log.Printf("[Board %s] User %s disconnected (remaining: %d)", roomID, client.UserID, room.size())
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}

		var ev model.BoardEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("[Board] Dropping unparseable frame: %v", err)
			continue
		}
		metrics.EventsProcessed.WithLabelValues(string(ev.Type)).Inc()

		if ev.Type == model.EventJoinRoom {
			if session != nil {
				continue // already joined on this connection
			}
			session, room, roomID = h.handleJoin(client, ev)
			continue
		}

		if session == nil {
			continue
		}

		h.dispatch(session, room, roomID, ev)
	}
}

// dispatch applies one mutation event to the session and fans the result
// out. Apply and broadcast run as a single unit under the room's ordering
// lock: the session decides which of two concurrent edits wins, and holding
// the lock across both steps guarantees the winner is also the last event
// delivered, so clients cannot settle on the losing value.
func (h *BoardWSHandler) dispatch(session *board.Session, room *boardRoom, roomID string, ev model.BoardEvent) {
	room.order.Lock()
	defer room.order.Unlock()

	switch ev.Type {
	case model.EventElementCreated:
		if ev.Element == nil {
			return
		}
		created := session.ApplyCreate(*ev.Element)
		room.broadcast(model.BoardEvent{
			Type:    model.EventElementCreated,
			RoomID:  roomID,
			Element: &created,
		})

	case model.EventElementUpdated:
		if ev.Element == nil {
			return
		}
		updated := session.ApplyUpdate(*ev.Element)
		room.broadcast(model.BoardEvent{
			Type:    model.EventElementUpdated,
			RoomID:  roomID,
			Element: &updated,
		})

	case model.EventElementDeleted:
		if _, ok := session.ApplyDelete(ev.ElementID); !ok {
			return
		}
		room.broadcast(model.BoardEvent{
			Type:      model.EventElementDeleted,
			RoomID:    roomID,
			ElementID: ev.ElementID,
		})

	case model.EventBoardCleared:
		session.ApplyClear()
		room.broadcast(model.BoardEvent{
			Type:   model.EventBoardCleared,
			RoomID: roomID,
		})

	case model.EventUndo:
		for _, out := range session.Undo() {
			room.broadcast(out)
		}

	case model.EventRedo:
		for _, out := range session.Redo() {
			room.broadcast(out)
		}

	default:
		log.Printf("[Board %s] Ignoring event type %q", roomID, ev.Type)
	}
}

// handleJoin validates the room code, registers presence, sends the full
// snapshot to the joiner, and announces the join to everyone else. An
// invalid code gets an error_message and leaves the registry untouched.
func (h *BoardWSHandler) handleJoin(client *BoardClient, ev model.BoardEvent) (*board.Session, *boardRoom, string) {
	if !model.RoomIDValid(ev.RoomID) {
		client.send(model.BoardEvent{
			Type:    model.EventError,
			Message: "invalid room id",
		})
		return nil, nil, ""
	}

	session := h.registry.EnsureRoom(ev.RoomID)

	var user model.UserInfo
	if ev.User != nil {
		user = *ev.User
	}
	user = session.Join(user)
	client.UserID = user.ID

	room := h.joinRoom(ev.RoomID, client)

	// Snapshot capture and initial_state delivery hold the ordering lock,
	// so no broadcast can slip between the captured state and the frame
	// that carries it. Any delta the joiner received before this point is
	// already folded into the snapshot.
	room.order.Lock()
	state := session.Snapshot()
	client.send(model.BoardEvent{
		Type:   model.EventInitialState,
		RoomID: ev.RoomID,
		State:  &state,
	})
	room.broadcastExcept(client, model.BoardEvent{
		Type:   model.EventUserJoined,
		RoomID: ev.RoomID,
		User:   &user,
	})
	room.order.Unlock()

	log.Printf("[Board %s] User %s joined (total: %d)", ev.RoomID, user.ID, room.size())
	return session, room, ev.RoomID
}
