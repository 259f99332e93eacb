package handler

import (
	"github.com/gofiber/fiber/v2"

	"whiteboard-backend/internal/board"
	"whiteboard-backend/internal/model"
)

// RoomHandler serves the small REST surface around rooms: minting codes
// for the landing flow and peeking at a room before joining.
type RoomHandler struct {
	registry *board.Registry
}

func NewRoomHandler(registry *board.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// CreateRoom mints a fresh room code. The session itself is created lazily
// on the first join, so unused codes cost nothing.
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"roomId": model.GenerateRoomID()})
}

// GetRoom reports whether a room is live and how busy it is.
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID := c.Params("id")
	if !model.RoomIDValid(roomID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid room id"})
	}

	session, ok := h.registry.Get(roomID)
	if !ok {
		return c.JSON(fiber.Map{
			"roomId": roomID,
			"exists": false,
		})
	}

	return c.JSON(fiber.Map{
		"roomId":   roomID,
		"exists":   true,
		"users":    session.UserCount(),
		"elements": session.ElementCount(),
	})
}
