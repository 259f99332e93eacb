package model

// HistoryActionType tags one reversible room mutation.
type HistoryActionType string

const (
	ActionCreate HistoryActionType = "create"
	ActionUpdate HistoryActionType = "update"
	ActionDelete HistoryActionType = "delete"
	ActionClear  HistoryActionType = "clear"
)

// HistoryAction records one mutation with enough data to undo it without
// consulting any other state: update and delete carry the full prior value,
// clear carries a snapshot of every element that existed at clear time.
type HistoryAction struct {
	Type     HistoryActionType `json:"type"`
	Element  *Element          `json:"element,omitempty"`
	Previous *Element          `json:"previous,omitempty"`
	Snapshot []Element         `json:"snapshot,omitempty"`
}
