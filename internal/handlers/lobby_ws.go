// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/lobbyd/internal/middleware"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/server"
	"github.com/sirupsen/logrus"
)

const (
	outboxSize   = 64
	readLimit    = 32 << 10
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

var (
	errConnClosed = errors.New("connection closed")
	errOutboxFull = errors.New("outbox full")
)

// wsConn is the server.Conn of one websocket. Writes are queued on a bounded
// outbox drained by writePump.
type wsConn struct {
	c      *websocket.Conn
	out    chan protocol.Message
	done   chan struct{}
	once   sync.Once
	logger *logrus.Entry
}

func newWSConn(c *websocket.Conn, logger *logrus.Entry) *wsConn {
	return &wsConn{
		c:      c,
		out:    make(chan protocol.Message, outboxSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Write queues msg without blocking.
func (w *wsConn) Write(msg protocol.Message) error {
	select {
	case <-w.done:
		return errConnClosed
	default:
	}
	select {
	case w.out <- msg:
		return nil
	default:
		return errOutboxFull
	}
}

// Shutdown stops the outbox and closes the socket with ServerShutdownClose.
func (w *wsConn) Shutdown(reason string) error {
	if !w.stop() {
		return nil
	}
	return w.c.Close(ServerShutdownClose, reason)
}

// stop marks the connection closed. It reports whether this call did it.
func (w *wsConn) stop() bool {
	stopped := false
	w.once.Do(func() {
		close(w.done)
		stopped = true
	})
	return stopped
}

// LobbyWSHandler upgrades to a websocket speaking the "lobby" subprotocol and
// feeds every text frame to a server.Session in arrival order.
func LobbyWSHandler(logger *logrus.Logger, l *server.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"lobby"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "lobby" {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}
		c.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		entry := logger.WithField("remote", remoteAddr)
		conn := newWSConn(c, entry)
		session := l.Connect(conn, remoteAddr)
		entry = entry.WithField("session", session.ID())
		conn.logger = entry
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, conn)

		readErr := readPump(ctx, conn, session)

		// ---- Cleanup after readPump exits ----
		session.Disconnect(context.Background())
		conn.stop()
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, readErr)
	}
}

// readPump decodes frames and dispatches them until the socket fails.
// The returned error is nil for a normal close.
func readPump(ctx context.Context, conn *wsConn, session *server.Session) error {
	for {
		typ, data, err := conn.c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway, ServerShutdownClose:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			conn.logger.Warnf("ignoring non-text message type %d", typ)
			continue
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			conn.logger.Warnf("invalid message: %v", err)
			_ = conn.Write(protocol.New(protocol.ActionActionRejected,
				protocol.FieldAction, "",
				protocol.FieldReason, "malformed message",
			))
			continue
		}
		dispatch(ctx, conn, session, msg)
	}
}

// dispatch runs one command. A panicking handler is logged and the loop goes on.
func dispatch(ctx context.Context, conn *wsConn, session *server.Session, msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			conn.logger.Errorf("panic handling %s: %v", msg.Action, r)
		}
	}()
	session.Handle(ctx, msg)
}

// writePump drains the outbox onto the socket and keeps the connection alive with pings.
func writePump(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.done:
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.c.Ping(pingCtx)
			cancel()
			if err != nil {
				conn.logger.Debugf("ping failed: %v", err)
			}
		case msg := <-conn.out:
			data, err := protocol.Encode(msg)
			if err != nil {
				conn.logger.Warnf("failed to marshal outgoing %s: %v", msg.Action, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = conn.c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				conn.logger.Warnf("failed to write to websocket: %v", err)
				if conn.stop() {
					conn.c.Close(WriteFailedClose, "write failed")
				}
				return
			}
		}
	}
}
