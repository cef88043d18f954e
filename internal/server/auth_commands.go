// internal/server/auth_commands.go
package server

import (
	"context"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/sirupsen/logrus"
)

func handleRegister(ctx context.Context, s *Session, msg protocol.Message) {
	name, err := requireString(msg, protocol.FieldName)
	if err != nil {
		s.reject(protocol.ActionRegisterRejected, err)
		return
	}
	password, err := requireString(msg, protocol.FieldPassword)
	if err != nil {
		s.reject(protocol.ActionRegisterRejected, err)
		return
	}
	email, err := optionalString(msg, protocol.FieldEmail)
	if err != nil {
		s.reject(protocol.ActionRegisterRejected, err)
		return
	}

	if err := s.lobby.auth.Register(ctx, name, password, email); err != nil {
		s.reject(protocol.ActionRegisterRejected, err)
		return
	}
	s.log.WithField("player", name).Info("registered")
	s.reply(protocol.New(protocol.ActionRegisterAccepted))
}

func handleLogin(ctx context.Context, s *Session, msg protocol.Message) {
	name, err := requireString(msg, protocol.FieldName)
	if err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}
	password, err := requireString(msg, protocol.FieldPassword)
	if err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}

	s.bind(ctx, name, func() error {
		ok, err := s.lobby.auth.Verify(ctx, name, password)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrBadCredentials
		}
		return nil
	})
}

func handleLoginSession(ctx context.Context, s *Session, msg protocol.Message) {
	token, err := requireString(msg, protocol.FieldToken)
	if err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}
	if _, bound := s.Identity(); bound {
		s.reject(protocol.ActionLoginRejected, apperr.ErrAlreadyBound)
		return
	}

	name, err := s.lobby.auth.ResolveSession(ctx, token)
	if err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}
	s.bind(ctx, name, nil)
}

// bind logs the session in as name. The name is reserved while check runs and
// a fresh token is issued; the directory and registry entries are then added
// together with the reply and the PlayerLogin broadcast.
func (s *Session) bind(ctx context.Context, name string, check func() error) {
	l := s.lobby
	if err := l.reserve(s, name); err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}

	if check != nil {
		if err := check(); err != nil {
			l.release(name)
			s.reject(protocol.ActionLoginRejected, err)
			return
		}
	}

	token, err := l.auth.IssueSession(ctx, name)
	if err != nil {
		l.release(name)
		s.reject(protocol.ActionLoginRejected, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, name)

	if _, err := l.directory.AddPlayer(name); err != nil {
		s.reject(protocol.ActionLoginRejected, err)
		return
	}
	l.registry.add(name, s)
	s.name = name

	s.reply(protocol.New(protocol.ActionLoginAccepted, protocol.FieldToken, token))
	l.broadcastLocked(protocol.New(protocol.ActionPlayerLogin, protocol.FieldPlayerName, name))
	l.record(protocol.ActionLogin, name, "", nil)

	s.log.WithFields(logrus.Fields{
		"player": name,
		"online": l.registry.len(),
	}).Info("logged in")
}

// reserve claims name for an in-flight login on s.
func (l *Lobby) reserve(s *Session, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, bound := s.identityLocked(); bound {
		return apperr.ErrAlreadyBound
	}
	if _, pending := l.pending[name]; pending || l.directory.HasPlayer(name) {
		return apperr.Wrap(apperr.ErrNameInUse, name)
	}
	l.pending[name] = s
	return nil
}

func (l *Lobby) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, name)
}

func handleLogout(s *Session, name string, _ protocol.Message) {
	s.lobby.logoutLocked(s, name)
	s.reply(protocol.New(protocol.ActionLogoutAccepted))
}

// logoutLocked leaves the current game, if any, then removes name from the
// directory and the registry and broadcasts LeaveLobby.
func (l *Lobby) logoutLocked(s *Session, name string) {
	if p, ok := l.directory.Player(name); ok && p.Game != "" {
		dep, err := l.directory.LeaveGame(name)
		if err != nil {
			s.log.WithError(err).Warn("leave game on logout")
		} else {
			l.announceDepartureLocked(name, dep)
		}
	}
	if err := l.directory.RemovePlayer(name); err != nil {
		s.log.WithError(err).Warn("remove player on logout")
	}
	l.registry.remove(name)
	s.name = ""

	l.broadcastLocked(protocol.New(protocol.ActionLeaveLobby, protocol.FieldPlayerName, name))
	l.record(protocol.ActionLogout, name, "", nil)
	s.log.WithField("player", name).Info("logged out")
}
