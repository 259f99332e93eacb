package model

import (
	"math/rand"
	"regexp"
)

// UserInfo is a participant's display identity. The ID is generated
// client-side per browser session; it is not a durable account identity.
type UserInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsActive bool   `json:"isActive,omitempty"`
}

// RoomState is the full snapshot sent to a newly joined participant. It is
// self-sufficient: elements plus users reconstruct the board exactly.
// Element order is insertion-order-free and not guaranteed to round-trip.
type RoomState struct {
	RoomID   string     `json:"roomId"`
	Elements []Element  `json:"elements"`
	Users    []UserInfo `json:"users"`
}

// DefaultColors is the participant palette. The session hands one out to
// any joiner that did not pick a color of its own.
var DefaultColors = []string{"#2563eb", "#ea580c", "#16a34a", "#db2777", "#0891b2", "#7c3aed"}

// Shared client/server contract for room codes.
var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)

// RoomIDValid reports whether id is an acceptable room code: alphanumeric
// plus hyphen/underscore, 4 to 20 characters.
func RoomIDValid(id string) bool {
	return roomIDPattern.MatchString(id)
}

// roomIDAlphabet omits easily confused glyphs (0/O, 1/I).
const roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomIDLength = 6

// GenerateRoomID returns a fresh 6-character room code. Generated codes
// always satisfy RoomIDValid.
func GenerateRoomID() string {
	b := make([]byte, roomIDLength)
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b)
}
