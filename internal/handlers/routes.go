package handlers

import (
	"net/http"

	"github.com/jason-s-yu/lobbyd/internal/middleware"
	"github.com/jason-s-yu/lobbyd/internal/server"
	"github.com/sirupsen/logrus"
)

// NewMux mounts the lobby endpoints:
//
//	GET /lobby/ws       websocket, subprotocol "lobby"
//	GET /lobby/players  logged-in players (auth_token cookie or Bearer token)
//	GET /lobby/games    pending games (auth_token cookie or Bearer token)
//	GET /healthz        liveness
func NewMux(logger *logrus.Logger, l *server.Lobby) *http.ServeMux {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/lobby/ws", logged(LobbyWSHandler(logger, l)))
	mux.Handle("/lobby/players", logged(ListPlayersHandler(logger, l)))
	mux.Handle("/lobby/games", logged(ListGamesHandler(logger, l)))
	mux.HandleFunc("/healthz", HealthHandler)
	return mux
}
