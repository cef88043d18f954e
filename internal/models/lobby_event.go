package models

// LobbyEvent is one committed lobby state change, queued for the historian.
type LobbyEvent struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Player    string                 `json:"player"`
	Game      string                 `json:"game,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"` // epoch millis
}
