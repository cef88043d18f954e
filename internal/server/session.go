// internal/server/session.go
package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Session is the dispatcher of one connection. Its methods are called from the
// connection's own read loop, one message at a time.
type Session struct {
	lobby *Lobby
	conn  Conn
	id    string
	log   *logrus.Entry

	// name is the identity this connection last bound. The binding is only live
	// while the registry still maps name to this session. Guarded by lobby.mu.
	name string
}

// Connect creates the dispatcher for a newly accepted connection.
func (l *Lobby) Connect(conn Conn, remote string) *Session {
	id := uuid.NewString()
	s := &Session{
		lobby: l,
		conn:  conn,
		id:    id,
		log: l.logger.WithFields(logrus.Fields{
			"session": id,
			"remote":  remote,
		}),
	}
	l.mu.Lock()
	l.sessions[s] = struct{}{}
	l.mu.Unlock()
	return s
}

func (s *Session) ID() string { return s.id }

// identityLocked returns the live identity of the session.
func (s *Session) identityLocked() (string, bool) {
	if s.name == "" {
		return "", false
	}
	if s.lobby.registry.lookup(s.name) != s {
		return "", false
	}
	return s.name, true
}

// Identity reports the player bound to this connection, if any.
func (s *Session) Identity() (string, bool) {
	s.lobby.mu.Lock()
	defer s.lobby.mu.Unlock()
	return s.identityLocked()
}

// Handle runs the authentication gate and then the handler registered for msg.Action.
func (s *Session) Handle(ctx context.Context, msg protocol.Message) {
	r, known := s.lobby.routes[msg.Action]
	if known && r.public != nil {
		r.public(ctx, s, msg)
		return
	}

	l := s.lobby
	l.mu.Lock()
	defer l.mu.Unlock()

	name, ok := s.identityLocked()
	if !ok {
		l.sendLocked(s, protocol.New(protocol.ActionAuthError,
			protocol.FieldReason, apperr.ErrNotLoggedIn.Message,
		))
		return
	}
	if !known {
		l.sendLocked(s, protocol.New(protocol.ActionActionRejected,
			protocol.FieldAction, msg.Action,
			protocol.FieldReason, "unknown action",
		))
		return
	}
	r.authed(s, name, msg)
}

// Disconnect forgets a closed connection and runs the logout path if it is
// still bound. Calling it again is a no-op.
func (s *Session) Disconnect(ctx context.Context) {
	l := s.lobby
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.sessions, s)
	name, ok := s.identityLocked()
	if !ok {
		return
	}
	s.log.WithField("player", name).Info("disconnected while logged in, logging out")
	l.logoutLocked(s, name)
}

// reply sends msg to this connection.
func (s *Session) reply(msg protocol.Message) {
	if err := s.conn.Write(msg); err != nil {
		s.log.Warnf("dropped %s: %v", msg.Action, err)
	}
}

// reject replies with action and a reason derived from err. Internal errors
// are logged and reported without detail.
func (s *Session) reject(action string, err error) {
	s.reply(protocol.New(action, protocol.FieldReason, s.reason(err)))
}

func (s *Session) reason(err error) string {
	if a, ok := err.(*argError); ok {
		return a.Error()
	}
	if apperr.KindOf(err) == apperr.KindInternal {
		s.log.WithError(err).Error("command failed")
	}
	return apperr.Reason(err)
}
