// internal/server/lobby.go
package server

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Conn is the transport side of one client connection.
// Write must not block; a failed write only affects that connection.
type Conn interface {
	Write(msg protocol.Message) error
	Shutdown(reason string) error
}

// Authenticator is the credential and session service the lobby logs players in with.
type Authenticator interface {
	Register(ctx context.Context, username, password, email string) error
	Verify(ctx context.Context, username, password string) (bool, error)
	IssueSession(ctx context.Context, username string) (string, error)
	ResolveSession(ctx context.Context, token string) (string, error)
}

// Options configures a Lobby. Zero values pick defaults.
type Options struct {
	Limits      lobby.Limits
	MatchServer string // host:port handed to players when a game starts
	Journal     cache.Recorder
}

// Lobby is the shared lobby service. One mutex guards the directory, the
// live-session registry and pending logins together; every message a command
// emits is queued while that mutex is held.
type Lobby struct {
	mu        sync.Mutex
	directory *lobby.Directory
	registry  *registry
	pending   map[string]*Session   // names reserved by in-flight logins
	sessions  map[*Session]struct{} // every open connection, bound or not

	auth    Authenticator
	journal cache.Recorder
	logger  *logrus.Logger
	routes  map[string]route

	matchAddr string
	matchIP   string
	matchPort int
}

// NewLobby builds an empty lobby.
func NewLobby(authenticator Authenticator, logger *logrus.Logger, opts Options) *Lobby {
	if opts.Journal == nil {
		opts.Journal = cache.NoopJournal{}
	}
	if opts.MatchServer == "" {
		opts.MatchServer = "127.0.0.1:5501"
	}
	l := &Lobby{
		directory: lobby.NewDirectory(opts.Limits),
		registry:  newRegistry(),
		pending:   make(map[string]*Session),
		sessions:  make(map[*Session]struct{}),
		auth:      authenticator,
		journal:   opts.Journal,
		logger:    logger,
		routes:    newRoutes(),
		matchAddr: opts.MatchServer,
	}
	if host, port, err := net.SplitHostPort(opts.MatchServer); err == nil {
		l.matchIP = host
		l.matchPort, _ = strconv.Atoi(port)
	} else {
		logger.Warnf("match server address %q is not host:port: %v", opts.MatchServer, err)
		l.matchIP = opts.MatchServer
	}
	return l
}

// Players returns a snapshot of every logged-in player.
func (l *Lobby) Players() []lobby.Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.directory.Players()
}

// Games returns a snapshot of every pending game.
func (l *Lobby) Games() []lobby.GameInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.directory.Games()
}

// Authenticate resolves a session token to a username without binding anything.
func (l *Lobby) Authenticate(ctx context.Context, token string) (string, error) {
	return l.auth.ResolveSession(ctx, token)
}

// Shutdown closes every open connection, including anonymous ones and those
// already handed off to a match. Their disconnect paths clean up the directory.
func (l *Lobby) Shutdown(reason string) {
	l.mu.Lock()
	sessions := make([]*Session, 0, len(l.sessions))
	for s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.mu.Unlock()

	for _, s := range sessions {
		if err := s.conn.Shutdown(reason); err != nil {
			s.log.Debugf("shutdown: %v", err)
		}
	}
}

// sendLocked writes msg to one session. Failures are logged and swallowed.
func (l *Lobby) sendLocked(s *Session, msg protocol.Message) {
	if s == nil {
		return
	}
	if err := s.conn.Write(msg); err != nil {
		s.log.Warnf("dropped %s: %v", msg.Action, err)
	}
}

// sendToLocked writes msg to the live connection of name, if any.
func (l *Lobby) sendToLocked(name string, msg protocol.Message) {
	l.sendLocked(l.registry.lookup(name), msg)
}

// broadcastLocked writes msg to every live connection in registry order.
func (l *Lobby) broadcastLocked(msg protocol.Message) {
	for _, s := range l.registry.sessions() {
		l.sendLocked(s, msg)
	}
}

// record queues a journal event for a committed change.
func (l *Lobby) record(action, player, game string, payload map[string]interface{}) {
	l.journal.Record(models.LobbyEvent{
		Action:  action,
		Player:  player,
		Game:    game,
		Payload: payload,
	})
}
