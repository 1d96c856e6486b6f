package ws

import "github.com/cwrk-planet/meeting-service/internal/service"

// Frame types sent to clients.
const (
	TypeState = "state" // full meeting view after every commit
	TypeError = "error"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StatePayload = service.MeetingView

type ErrorPayload struct {
	Message string `json:"message"`
}
