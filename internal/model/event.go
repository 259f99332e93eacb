package model

// EventType discriminates the wire events exchanged with clients.
type EventType string

const (
	// inbound
	EventJoinRoom EventType = "join_room"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"

	// both directions
	EventElementCreated EventType = "element_created"
	EventElementUpdated EventType = "element_updated"
	EventElementDeleted EventType = "element_deleted"
	EventBoardCleared   EventType = "board_cleared"

	// outbound
	EventInitialState EventType = "initial_state"
	EventUserJoined   EventType = "user_joined"
	EventUserLeft     EventType = "user_left"
	EventError        EventType = "error_message"
)

// BoardEvent is the flat JSON envelope used in both directions. Only the
// fields relevant to Type are set; everything else is omitted.
type BoardEvent struct {
	Type      EventType  `json:"type"`
	RoomID    string     `json:"roomId,omitempty"`
	Element   *Element   `json:"element,omitempty"`
	ElementID string     `json:"elementId,omitempty"`
	User      *UserInfo  `json:"user,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	State     *RoomState `json:"state,omitempty"`
	Message   string     `json:"message,omitempty"`
}
