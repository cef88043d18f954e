// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the lobby endpoint.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected without the lobby subprotocol.
	ServerShutdownClose websocket.StatusCode = 3001 // Server is going away; the session was logged out.
	WriteFailedClose    websocket.StatusCode = 3002 // A write to the client failed or timed out.
)
