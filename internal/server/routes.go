package server

import (
	"context"

	"github.com/jason-s-yu/lobbyd/internal/protocol"
)

// publicHandler runs without the lobby lock and without a bound identity.
// It takes the lock itself around any directory or registry access.
type publicHandler func(ctx context.Context, s *Session, msg protocol.Message)

// authedHandler runs with the lobby lock held for a session bound to name.
type authedHandler func(s *Session, name string, msg protocol.Message)

type route struct {
	public publicHandler
	authed authedHandler
}

// newRoutes builds the action table. Only the registration and login actions
// are reachable without an identity.
func newRoutes() map[string]route {
	return map[string]route{
		protocol.ActionRegisterPlayer: {public: handleRegister},
		protocol.ActionLogin:          {public: handleLogin},
		protocol.ActionLoginSession:   {public: handleLoginSession},

		protocol.ActionLogout:         {authed: handleLogout},
		protocol.ActionCreateGame:     {authed: handleCreateGame},
		protocol.ActionJoinGame:       {authed: handleJoinGame},
		protocol.ActionInvitePlayer:   {authed: handleInvitePlayer},
		protocol.ActionLeaveGame:      {authed: handleLeaveGame},
		protocol.ActionKickPlayer:     {authed: handleKickPlayer},
		protocol.ActionStartGame:      {authed: handleStartGame},
		protocol.ActionRequestPlayers: {authed: handleRequestPlayers},
		protocol.ActionRequestGames:   {authed: handleRequestGames},
	}
}
