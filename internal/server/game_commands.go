// internal/server/game_commands.go
package server

import (
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Every handler in this file runs with the lobby lock held.

func handleCreateGame(s *Session, name string, msg protocol.Message) {
	l := s.lobby
	gameName, err := requireString(msg, protocol.FieldGameName)
	if err != nil {
		s.reject(protocol.ActionCreateRejected, err)
		return
	}
	maxPlayers, err := requireInt(msg, protocol.FieldMaxPlayers)
	if err != nil {
		s.reject(protocol.ActionCreateRejected, err)
		return
	}
	password, err := optionalString(msg, protocol.FieldPassword)
	if err != nil {
		s.reject(protocol.ActionCreateRejected, err)
		return
	}

	info, err := l.directory.CreateGame(gameName, name, maxPlayers, password)
	if err != nil {
		s.reject(protocol.ActionCreateRejected, err)
		return
	}

	s.reply(protocol.New(protocol.ActionCreateAccepted, protocol.FieldGameName, info.Name))
	l.broadcastLocked(protocol.New(protocol.ActionNewGame, protocol.FieldGame, info))
	l.record(protocol.ActionCreateGame, name, info.Name, map[string]interface{}{
		"maxplayers":       info.MaxPlayers,
		"passwordrequired": info.PasswordRequired,
	})
	s.log.WithFields(logrus.Fields{"player": name, "game": info.Name}).Info("game created")
}

func handleJoinGame(s *Session, name string, msg protocol.Message) {
	l := s.lobby
	gameName, err := requireString(msg, protocol.FieldGameName)
	if err != nil {
		s.reject(protocol.ActionJoinRejected, err)
		return
	}
	password, err := optionalString(msg, protocol.FieldPassword)
	if err != nil {
		s.reject(protocol.ActionJoinRejected, err)
		return
	}

	if err := l.directory.JoinGame(gameName, name, password); err != nil {
		s.reject(protocol.ActionJoinRejected, err)
		return
	}

	s.reply(protocol.New(protocol.ActionJoinAccepted, protocol.FieldGameName, gameName))
	l.broadcastLocked(protocol.New(protocol.ActionPlayerJoined,
		protocol.FieldGameName, gameName,
		protocol.FieldPlayerName, name,
	))
	l.record(protocol.ActionJoinGame, name, gameName, nil)
}

func handleInvitePlayer(s *Session, name string, msg protocol.Message) {
	l := s.lobby
	target, err := requireString(msg, protocol.FieldPlayerName)
	if err != nil {
		s.reject(protocol.ActionInviteRejected, err)
		return
	}

	gameName, err := l.directory.Invite(name, target)
	if err != nil {
		s.reject(protocol.ActionInviteRejected, err)
		return
	}

	s.reply(protocol.New(protocol.ActionInviteAccepted, protocol.FieldPlayerName, target))
	l.sendToLocked(target, protocol.New(protocol.ActionInvite,
		protocol.FieldGameName, gameName,
		protocol.FieldPlayerName, name,
	))
	l.record(protocol.ActionInvitePlayer, name, gameName, map[string]interface{}{"invitee": target})
}

func handleLeaveGame(s *Session, name string, _ protocol.Message) {
	l := s.lobby
	dep, err := l.directory.LeaveGame(name)
	if err != nil {
		s.reject(protocol.ActionLeaveRejected, err)
		return
	}
	s.reply(protocol.New(protocol.ActionLeaveAccepted, protocol.FieldGameName, dep.Game))
	l.announceDepartureLocked(name, dep)
}

// announceDepartureLocked emits the notifications for a LeaveGame by name.
// An owner leaving disbands the game: remaining members are kicked and every
// connection is told the game is gone.
func (l *Lobby) announceDepartureLocked(name string, dep lobby.Departure) {
	if dep.Disbanded {
		for _, member := range dep.Remaining {
			l.sendToLocked(member, protocol.New(protocol.ActionKickedFromGame, protocol.FieldGameName, dep.Game))
		}
		l.broadcastLocked(protocol.New(protocol.ActionRemoveGame, protocol.FieldGameName, dep.Game))
		l.record(protocol.ActionRemoveGame, name, dep.Game, map[string]interface{}{"members": dep.Remaining})
		return
	}

	l.broadcastLocked(protocol.New(protocol.ActionPlayerLeave,
		protocol.FieldGameName, dep.Game,
		protocol.FieldPlayerName, name,
	))
	l.record(protocol.ActionLeaveGame, name, dep.Game, nil)
}

func handleKickPlayer(s *Session, name string, msg protocol.Message) {
	l := s.lobby
	target, err := requireString(msg, protocol.FieldPlayerName)
	if err != nil {
		s.reject(protocol.ActionKickRejected, err)
		return
	}

	gameName, err := l.directory.KickPlayer(name, target)
	if err != nil {
		s.reject(protocol.ActionKickRejected, err)
		return
	}

	s.reply(protocol.New(protocol.ActionKickAccepted, protocol.FieldPlayerName, target))
	l.sendToLocked(target, protocol.New(protocol.ActionKickedFromGame, protocol.FieldGameName, gameName))
	l.broadcastLocked(protocol.New(protocol.ActionPlayerLeave,
		protocol.FieldGameName, gameName,
		protocol.FieldPlayerName, target,
	))
	l.record(protocol.ActionKickPlayer, name, gameName, map[string]interface{}{"kicked": target})
}

// handleStartGame hands the caller's game to the match server. Every member
// leaves the lobby: each gets the match address directly, then everyone still
// connected hears LeaveLobby for that member.
func handleStartGame(s *Session, name string, _ protocol.Message) {
	l := s.lobby
	gameName, err := l.directory.OwnedGame(name)
	if err != nil {
		s.reject(protocol.ActionStartRejected, err)
		return
	}
	members, err := l.directory.StartGame(gameName)
	if err != nil {
		s.reject(protocol.ActionStartRejected, err)
		return
	}

	l.broadcastLocked(protocol.New(protocol.ActionRemoveGame, protocol.FieldGameName, gameName))
	handoff := protocol.New(protocol.ActionStartGame,
		protocol.FieldGameName, gameName,
		protocol.FieldAddress, l.matchAddr,
		protocol.FieldIP, l.matchIP,
		protocol.FieldPort, l.matchPort,
	)
	for _, member := range members {
		l.sendToLocked(member, handoff)
		l.registry.remove(member)
		l.broadcastLocked(protocol.New(protocol.ActionLeaveLobby, protocol.FieldPlayerName, member))
	}
	l.record(protocol.ActionStartGame, name, gameName, map[string]interface{}{"members": members})
	s.log.WithFields(logrus.Fields{
		"game":    gameName,
		"members": members,
	}).Info("game handed off to match server")
}
