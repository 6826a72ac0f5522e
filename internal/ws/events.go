package ws

import "encoding/json"

// Client to server.
const (
	EventSetup      = "setup"
	EventJoinRoom   = "join room"
	EventLeaveRoom  = "leave room"
	EventTyping     = "typing"
	EventStopTyping = "stop typing"
	EventNewMessage = "new message"
)

// Server to client.
const (
	EventConnected       = "connected"
	EventMessageReceived = "message received"
	EventMessageSent     = "message sent"
	EventError           = "error"
)

// Frame is the envelope of every realtime signal in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type setupData struct {
	IdentityID string `json:"identityId"`
}

type roomData struct {
	RoomID string `json:"roomId"`
}

type typingData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type newMessageData struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
