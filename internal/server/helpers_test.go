package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/lobbyd/internal/auth"
	"github.com/jason-s-yu/lobbyd/internal/database"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("connection closed")

// mockConn records every message written to it.
type mockConn struct {
	mu       sync.Mutex
	msgs     []protocol.Message
	broken   bool
	shutdown string
}

func (c *mockConn) Write(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return errClosed
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *mockConn) Shutdown(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = reason
	c.broken = true
	return nil
}

// take returns and clears the recorded messages.
func (c *mockConn) take() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.msgs
	c.msgs = nil
	return out
}

type recordingJournal struct {
	mu     sync.Mutex
	events []models.LobbyEvent
}

func (j *recordingJournal) Record(ev models.LobbyEvent) {
	j.mu.Lock()
	j.events = append(j.events, ev)
	j.mu.Unlock()
}

func (j *recordingJournal) actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.events))
	for _, ev := range j.events {
		out = append(out, ev.Action)
	}
	return out
}

type harness struct {
	t       *testing.T
	lobby   *Lobby
	auth    *auth.Service
	journal *recordingJournal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	signer, err := auth.NewSigner()
	require.NoError(t, err)
	svc := auth.NewService(database.NewMemoryStore(), signer, nil, auth.Config{
		Params:        auth.Params{SaltSize: 16, Iterations: 4, KeyLength: 64},
		SessionExpiry: time.Hour,
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	journal := &recordingJournal{}
	l := NewLobby(svc, logger, Options{MatchServer: "10.0.0.7:5501", Journal: journal})
	return &harness{t: t, lobby: l, auth: svc, journal: journal}
}

type client struct {
	t       *testing.T
	conn    *mockConn
	session *Session
	token   string
}

func (h *harness) connect() *client {
	conn := &mockConn{}
	return &client{t: h.t, conn: conn, session: h.lobby.Connect(conn, "test")}
}

func (c *client) send(action string, kv ...interface{}) {
	c.session.Handle(context.Background(), protocol.New(action, kv...))
}

// expect asserts the next message has action and returns it.
func (c *client) expect(action string) protocol.Message {
	c.t.Helper()
	msgs := c.conn.take()
	require.NotEmpty(c.t, msgs, "expected %s, got nothing", action)
	require.Equal(c.t, action, msgs[0].Action, "got %v", msgs)
	// put the rest back
	c.conn.mu.Lock()
	c.conn.msgs = append(msgs[1:], c.conn.msgs...)
	c.conn.mu.Unlock()
	return msgs[0]
}

func (c *client) expectNothing() {
	c.t.Helper()
	require.Empty(c.t, c.conn.take())
}

func (c *client) actions() []string {
	msgs := c.conn.take()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Action)
	}
	return out
}

func field(t *testing.T, msg protocol.Message, key string) interface{} {
	t.Helper()
	v, ok := msg.Fields[key]
	require.True(t, ok, "message %s has no %s: %v", msg.Action, key, msg.Fields)
	return v
}

// login registers name with password "secret", logs it in on a fresh
// connection and clears every connection's inbox.
func (h *harness) login(name string, others ...*client) *client {
	h.t.Helper()
	require.NoError(h.t, h.auth.Register(context.Background(), name, "secret", name+"@x"))
	c := h.connect()
	c.send(protocol.ActionLogin, protocol.FieldName, name, protocol.FieldPassword, "secret")
	accepted := c.expect(protocol.ActionLoginAccepted)
	c.token = field(h.t, accepted, protocol.FieldToken).(string)
	c.conn.take()
	for _, o := range others {
		o.conn.take()
	}
	return c
}

// assertConsistent checks that every player's game lists that player and
// that every live identity has a registry entry.
func (h *harness) assertConsistent() {
	h.t.Helper()
	l := h.lobby
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.directory.Players() {
		require.NotNil(h.t, l.registry.lookup(p.Name), "%s has no registry entry", p.Name)
		if p.Game != "" {
			g, ok := l.directory.Game(p.Game)
			require.True(h.t, ok)
			require.Contains(h.t, g.Players, p.Name)
		}
	}
	require.Equal(h.t, len(l.directory.Players()), l.registry.len())
	require.Empty(h.t, l.pending)
}
