package board

import (
	"whiteboard-backend/internal/model"
)

// Undo/Redo operate on the whole room's shared history, not per user: any
// participant's undo reverts the room's most recent action regardless of
// who performed it. Both return the outbound events the caller must fan out
// to every room member, so the public event vocabulary stays uniform with
// the forward mutations.

// Undo reverses the most recent history entry and moves it to the redo
// stack. An empty undo stack is a silent no-op. An entry whose inverse
// cannot apply (an update that captured no prior value) leaves both stacks
// untouched and emits nothing.
func (s *Session) Undo() []model.BoardEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return nil
	}
	action := s.history[len(s.history)-1]
	if !undoable(action) {
		return nil
	}
	s.history = s.history[:len(s.history)-1]

	var events []model.BoardEvent
	switch action.Type {
	case model.ActionCreate:
		delete(s.elements, action.Element.ID)
		events = append(events, model.BoardEvent{
			Type:      model.EventElementDeleted,
			RoomID:    s.roomID,
			ElementID: action.Element.ID,
		})

	case model.ActionUpdate:
		restored := action.Previous.Clone()
		s.elements[restored.ID] = restored
		el := restored.Clone()
		events = append(events, model.BoardEvent{
			Type:    model.EventElementUpdated,
			RoomID:  s.roomID,
			Element: &el,
		})

	case model.ActionDelete:
		restored := action.Element.Clone()
		s.elements[restored.ID] = restored
		el := restored.Clone()
		events = append(events, model.BoardEvent{
			Type:    model.EventElementCreated,
			RoomID:  s.roomID,
			Element: &el,
		})

	case model.ActionClear:
		for _, snap := range action.Snapshot {
			restored := snap.Clone()
			s.elements[restored.ID] = restored
			el := restored.Clone()
			events = append(events, model.BoardEvent{
				Type:    model.EventElementCreated,
				RoomID:  s.roomID,
				Element: &el,
			})
		}
	}

	s.future = append(s.future, action)
	s.touch()
	return events
}

// Redo re-applies the most recently undone entry's forward effect and moves
// it back onto the undo stack. An empty redo stack is a silent no-op.
func (s *Session) Redo() []model.BoardEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.future) == 0 {
		return nil
	}
	action := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]

	var events []model.BoardEvent
	switch action.Type {
	case model.ActionCreate, model.ActionUpdate:
		applied := action.Element.Clone()
		s.elements[applied.ID] = applied
		el := applied.Clone()
		eventType := model.EventElementCreated
		if action.Type == model.ActionUpdate {
			eventType = model.EventElementUpdated
		}
		events = append(events, model.BoardEvent{
			Type:    eventType,
			RoomID:  s.roomID,
			Element: &el,
		})

	case model.ActionDelete:
		delete(s.elements, action.Element.ID)
		events = append(events, model.BoardEvent{
			Type:      model.EventElementDeleted,
			RoomID:    s.roomID,
			ElementID: action.Element.ID,
		})

	case model.ActionClear:
		s.elements = make(map[string]model.Element)
		events = append(events, model.BoardEvent{
			Type:   model.EventBoardCleared,
			RoomID: s.roomID,
		})
	}

	s.history = append(s.history, action)
	s.touch()
	return events
}

// undoable reports whether the entry carries the data its inverse needs.
func undoable(action model.HistoryAction) bool {
	switch action.Type {
	case model.ActionCreate, model.ActionDelete:
		return action.Element != nil
	case model.ActionUpdate:
		return action.Previous != nil
	case model.ActionClear:
		return action.Snapshot != nil
	}
	return false
}
