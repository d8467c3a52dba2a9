// Package ws implements the chat relay: a hub that fans incoming
// frames out to every other connected socket, and a client that keeps
// a link to such a hub alive.
package ws

// Inbound is a frame received from a connected client.
type Inbound struct {
	Type        string `json:"type"` // "message" | "ping"
	Content     string `json:"content,omitempty"`
	MessageType string `json:"messageType,omitempty"` // "user" | "ai"
	Metadata    string `json:"metadata,omitempty"`
}

// Outbound is a frame the relay sends to clients.
type Outbound struct {
	Type        string `json:"type"` // "message" | "system" | "pong" | "error"
	Content     string `json:"content,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Error       string `json:"error,omitempty"`
}
