package board

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"whiteboard-backend/internal/model"
)

// Session is the authoritative state of one room: current elements,
// connected users, and the shared undo/redo stacks. All maps and stacks are
// owned exclusively by the session and mutated only through its methods;
// every public operation runs start-to-finish under the session mutex, so
// operations apply in the exact order they win the lock (FIFO per room).
type Session struct {
	roomID   string
	elements map[string]model.Element
	history  []model.HistoryAction // undo stack, last-in-first-out
	future   []model.HistoryAction // redo stack
	users    map[string]model.UserInfo

	clock      clock.Clock
	lastActive time.Time

	mu sync.Mutex
}

func newSession(roomID string, clk clock.Clock) *Session {
	return &Session{
		roomID:     roomID,
		elements:   make(map[string]model.Element),
		users:      make(map[string]model.UserInfo),
		clock:      clk,
		lastActive: clk.Now(),
	}
}

// RoomID returns the room code this session belongs to.
func (s *Session) RoomID() string {
	return s.roomID
}

// ApplyCreate inserts the element, overwriting silently on id collision
// (replay and redo rely on this), pushes a create history entry, clears the
// redo stack, and returns the normalized element for broadcast.
func (s *Session) ApplyCreate(el model.Element) model.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := s.normalize(el)
	s.elements[normalized.ID] = normalized.Clone()
	entry := normalized.Clone()
	s.pushHistory(model.HistoryAction{Type: model.ActionCreate, Element: &entry})
	s.touch()
	return normalized
}

// ApplyUpdate captures the existing value (if any) as the prior value,
// overwrites with the new one, pushes an update entry, and clears the redo
// stack. An update for an unknown id degrades to an insert; its history
// entry then carries no prior value.
func (s *Session) ApplyUpdate(el model.Element) model.Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous *model.Element
	if existing, ok := s.elements[el.ID]; ok {
		prior := existing.Clone()
		previous = &prior
	}

	normalized := s.normalize(el)
	s.elements[normalized.ID] = normalized.Clone()
	entry := normalized.Clone()
	s.pushHistory(model.HistoryAction{Type: model.ActionUpdate, Element: &entry, Previous: previous})
	s.touch()
	return normalized
}

// ApplyDelete removes the element and pushes a delete entry carrying the
// removed value. Deleting an absent id is a complete no-op: no history
// entry, no redo invalidation, ok=false.
func (s *Session) ApplyDelete(elementID string) (model.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.elements[elementID]
	if !ok {
		return model.Element{}, false
	}

	delete(s.elements, elementID)
	removed := existing.Clone()
	s.pushHistory(model.HistoryAction{Type: model.ActionDelete, Element: &removed})
	s.touch()
	return existing, true
}

// ApplyClear snapshots every current element into one clear entry, then
// empties the element map and clears the redo stack. The snapshot is never
// nil so that undoing a clear is always applicable, even for an empty board.
func (s *Session) ApplyClear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]model.Element, 0, len(s.elements))
	for _, el := range s.elements {
		snapshot = append(snapshot, el.Clone())
	}
	s.pushHistory(model.HistoryAction{Type: model.ActionClear, Snapshot: snapshot})
	s.elements = make(map[string]model.Element)
	s.touch()
	return len(snapshot)
}

// Join registers the user's presence, stamping an id and a palette color
// when the client sent none. Presence is not undoable: no history entry.
func (s *Session) Join(user model.UserInfo) model.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Color == "" {
		user.Color = model.DefaultColors[len(s.users)%len(model.DefaultColors)]
	}
	s.users[user.ID] = user
	s.touch()
	return user
}

// Leave removes the user's presence. Prior edits are never rolled back.
func (s *Session) Leave(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false
	}
	delete(s.users, userID)
	s.touch()
	return true
}

// Snapshot returns the full room state at the moment of the call. Elements
// and users are deep-copied, so the caller can serialize without racing
// later mutations.
func (s *Session) Snapshot() model.RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := model.RoomState{
		RoomID:   s.roomID,
		Elements: make([]model.Element, 0, len(s.elements)),
		Users:    make([]model.UserInfo, 0, len(s.users)),
	}
	for _, el := range s.elements {
		state.Elements = append(state.Elements, el.Clone())
	}
	for _, u := range s.users {
		state.Users = append(state.Users, u)
	}
	return state
}

// UserCount returns the number of connected users.
func (s *Session) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// ElementCount returns the number of elements on the board.
func (s *Session) ElementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.elements)
}

// HistoryLen returns the current undo and redo stack depths.
func (s *Session) HistoryLen() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history), len(s.future)
}

// LastActive returns the time of the most recent operation on the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// pushHistory appends a new forward action and invalidates the redo stack.
// Redo only survives across Undo/Redo calls themselves. Callers hold s.mu.
func (s *Session) pushHistory(action model.HistoryAction) {
	s.history = append(s.history, action)
	s.future = s.future[:0]
}

// normalize stamps server-authoritative fields: a uuid when the client sent
// no id, createdAt when absent, and a fresh updatedAt that never moves
// backwards relative to the stored element. Callers hold s.mu.
func (s *Session) normalize(el model.Element) model.Element {
	if el.ID == "" {
		el.ID = uuid.NewString()
	}

	now := s.clock.Now().UnixMilli()
	if el.CreatedAt == 0 {
		el.CreatedAt = now
	}
	el.UpdatedAt = now
	if existing, ok := s.elements[el.ID]; ok && el.UpdatedAt <= existing.UpdatedAt {
		el.UpdatedAt = existing.UpdatedAt + 1
	}
	if el.UpdatedAt < el.CreatedAt {
		el.UpdatedAt = el.CreatedAt
	}
	return el
}

func (s *Session) touch() {
	s.lastActive = s.clock.Now()
}
