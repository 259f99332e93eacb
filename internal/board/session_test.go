package board

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard-backend/internal/model"
)

func newTestSession(t *testing.T) (*Session, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.UnixMilli(1_700_000_000_000))
	return newSession("ROOM42", clk), clk
}

func rectElement(id string, width float64) model.Element {
	return model.Element{
		ID:          id,
		Type:        model.ElementRect,
		X:           10,
		Y:           20,
		Width:       width,
		Height:      50,
		StrokeColor: "#2563eb",
		CreatedBy:   "user-1",
	}
}

func elementByID(t *testing.T, s *Session, id string) model.Element {
	t.Helper()
	for _, el := range s.Snapshot().Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %s not found in snapshot", id)
	return model.Element{}
}

func TestApplyCreateStampsTimestamps(t *testing.T) {
	s, clk := newTestSession(t)

	created := s.ApplyCreate(rectElement("r1", 100))

	now := clk.Now().UnixMilli()
	assert.Equal(t, now, created.CreatedAt)
	assert.Equal(t, now, created.UpdatedAt)

	undo, redo := s.HistoryLen()
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)
}

func TestApplyCreateOverwritesOnCollision(t *testing.T) {
	s, _ := newTestSession(t)

	s.ApplyCreate(rectElement("r1", 100))
	s.ApplyCreate(rectElement("r1", 250))

	state := s.Snapshot()
	require.Len(t, state.Elements, 1)
	assert.Equal(t, 250.0, state.Elements[0].Width)
}

func TestApplyCreateStampsMissingID(t *testing.T) {
	s, _ := newTestSession(t)

	created := s.ApplyCreate(model.Element{Type: model.ElementEllipse, Width: 10, Height: 10})

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, s.ElementCount())
}

func TestApplyUpdateCapturesPriorValue(t *testing.T) {
	s, _ := newTestSession(t)

	s.ApplyCreate(rectElement("r1", 100))
	s.ApplyUpdate(rectElement("r1", 200))

	events := s.Undo()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventElementUpdated, events[0].Type)
	assert.Equal(t, 100.0, events[0].Element.Width, "undo must restore the exact prior value")
	assert.Equal(t, 100.0, elementByID(t, s, "r1").Width)

	events = s.Redo()
	require.Len(t, events, 1)
	assert.Equal(t, 200.0, events[0].Element.Width)
	assert.Equal(t, 200.0, elementByID(t, s, "r1").Width)
}

func TestApplyUpdateUnknownIDDegradesToInsert(t *testing.T) {
	s, _ := newTestSession(t)

	s.ApplyUpdate(rectElement("ghost", 75))

	assert.Equal(t, 1, s.ElementCount())
	undo, _ := s.HistoryLen()
	assert.Equal(t, 1, undo)
}

func TestApplyUpdateKeepsUpdatedAtMonotonic(t *testing.T) {
	s, _ := newTestSession(t)

	first := s.ApplyCreate(rectElement("r1", 100))
	// Wall clock has not advanced; the stamp must still move forward.
	second := s.ApplyUpdate(rectElement("r1", 150))

	assert.Greater(t, second.UpdatedAt, first.UpdatedAt)
	assert.GreaterOrEqual(t, second.UpdatedAt, second.CreatedAt)
}

func TestApplyDeleteIdempotent(t *testing.T) {
	s, _ := newTestSession(t)

	_, ok := s.ApplyDelete("missing")

	assert.False(t, ok)
	undo, redo := s.HistoryLen()
	assert.Equal(t, 0, undo, "no-op delete must not push a history entry")
	assert.Equal(t, 0, redo)
}

func TestApplyDeleteCarriesRemovedValue(t *testing.T) {
	s, _ := newTestSession(t)

	s.ApplyCreate(rectElement("r1", 100))
	removed, ok := s.ApplyDelete("r1")

	require.True(t, ok)
	assert.Equal(t, "r1", removed.ID)
	assert.Equal(t, 0, s.ElementCount())

	events := s.Undo()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventElementCreated, events[0].Type)
	assert.Equal(t, 100.0, elementByID(t, s, "r1").Width)
}

func TestNewActionClearsRedoStack(t *testing.T) {
	cases := []struct {
		name string
		op   func(s *Session)
	}{
		{"create", func(s *Session) { s.ApplyCreate(rectElement("x", 10)) }},
		{"update", func(s *Session) { s.ApplyUpdate(rectElement("x", 20)) }},
		{"delete", func(s *Session) { s.ApplyDelete("x") }},
		{"clear", func(s *Session) { s.ApplyClear() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			s.ApplyCreate(rectElement("x", 5))
			s.ApplyCreate(rectElement("seed", 1))
			s.Undo()
			_, redo := s.HistoryLen()
			require.Equal(t, 1, redo, "precondition: undo must populate redo")

			tc.op(s)
			_, redo = s.HistoryLen()
			assert.Equal(t, 0, redo, "%s must invalidate the redo stack", tc.name)
		})
	}
}

func TestJoinStampsMissingUserID(t *testing.T) {
	s, _ := newTestSession(t)

	user := s.Join(model.UserInfo{Name: "Ada", Color: "#2563eb"})

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, s.UserCount())
}

func TestJoinAssignsPaletteColor(t *testing.T) {
	s, _ := newTestSession(t)

	// A joiner without a color draws one from the shared palette; a joiner
	// that picked its own keeps it.
	anon := s.Join(model.UserInfo{Name: "Ada"})
	assert.Contains(t, model.DefaultColors, anon.Color)

	picked := s.Join(model.UserInfo{ID: "u2", Name: "Brin", Color: "#000000"})
	assert.Equal(t, "#000000", picked.Color)

	next := s.Join(model.UserInfo{ID: "u3", Name: "Cleo"})
	assert.Contains(t, model.DefaultColors, next.Color)
	assert.NotEqual(t, anon.Color, next.Color, "consecutive anonymous joiners cycle the palette")
}

func TestJoinLeavePresence(t *testing.T) {
	s, _ := newTestSession(t)

	s.Join(model.UserInfo{ID: "u1", Name: "Ada"})
	s.Join(model.UserInfo{ID: "u2", Name: "Brin"})
	assert.Equal(t, 2, s.UserCount())

	assert.True(t, s.Leave("u1"))
	assert.False(t, s.Leave("u1"), "second leave is a no-op")
	assert.Equal(t, 1, s.UserCount())

	// Presence is not part of the undo history.
	undo, _ := s.HistoryLen()
	assert.Equal(t, 0, undo)
}

func TestSnapshotIsSelfSufficientAndIsolated(t *testing.T) {
	s, _ := newTestSession(t)

	s.Join(model.UserInfo{ID: "u1", Name: "Ada"})
	s.ApplyCreate(model.Element{
		ID:     "pen-1",
		Type:   model.ElementPen,
		Points: []model.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
	})

	state := s.Snapshot()
	require.Len(t, state.Elements, 1)
	require.Len(t, state.Users, 1)
	assert.Equal(t, "ROOM42", state.RoomID)

	// Mutating the snapshot must not leak into the session.
	state.Elements[0].Points[0].X = 99
	assert.Equal(t, 1.0, elementByID(t, s, "pen-1").Points[0].X)
}
