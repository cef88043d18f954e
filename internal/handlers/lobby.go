// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/server"
	"github.com/sirupsen/logrus"
)

// authenticate resolves the request's session token. It writes the HTTP error
// and returns false when the request is not authenticated.
func authenticate(w http.ResponseWriter, r *http.Request, l *server.Lobby, logger *logrus.Logger) bool {
	token := requestToken(r)
	if token == "" {
		http.Error(w, "missing auth_token", http.StatusUnauthorized)
		return false
	}
	if _, err := l.Authenticate(r.Context(), token); err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) || errors.Is(err, apperr.ErrSessionExpired) {
			http.Error(w, "invalid token", http.StatusForbidden)
			return false
		}
		logger.Errorf("resolve session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	return true
}

// ListPlayersHandler returns the logged-in players.
func ListPlayersHandler(logger *logrus.Logger, l *server.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authenticate(w, r, l, logger) {
			return
		}
		writeJSON(w, logger, l.Players())
	}
}

// ListGamesHandler returns the pending games. Passwords are never included.
func ListGamesHandler(logger *logrus.Logger, l *server.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authenticate(w, r, l, logger) {
			return
		}
		writeJSON(w, logger, l.Games())
	}
}

// HealthHandler answers liveness probes.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, logger *logrus.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("failed to encode response: %v", err)
	}
}
