// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu     sync.Mutex
	events []models.LobbyEvent
	fail   int    // number of calls to fail before succeeding
	reject string // player whose events are refused as bad data
}

func (c *collectingSink) insert(_ context.Context, events []models.LobbyEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return errors.New("db down")
	}
	for _, ev := range events {
		if ev.Player == c.reject {
			return fmt.Errorf("%w: value too long for player", ErrRejected)
		}
	}
	c.events = append(c.events, events...)
	return nil
}

func (c *collectingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newTestService(t *testing.T, sink *collectingSink) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(rdb, sink.insert, logger, Config{BatchSize: 2, FlushDelay: 100 * time.Millisecond})
	return svc, rdb
}

func pushEvent(t *testing.T, rdb *redis.Client, action, player string) {
	t.Helper()
	data, err := json.Marshal(models.LobbyEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Player:    player,
		Timestamp: time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	require.NoError(t, rdb.RPush(context.Background(), "lobby_events", data).Err())
}

func TestHistorianFlushesBatches(t *testing.T) {
	sink := &collectingSink{}
	svc, rdb := newTestService(t, sink)

	pushEvent(t, rdb, "Login", "adam")
	pushEvent(t, rdb, "CreateGame", "adam")
	pushEvent(t, rdb, "Login", "eve")
	require.NoError(t, rdb.RPush(context.Background(), "lobby_events", "not json").Err())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sink.count() == 3 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	<-done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "Login", sink.events[0].Action)
	assert.Equal(t, "eve", sink.events[2].Player)
}

func TestHistorianRetriesFailedFlush(t *testing.T) {
	sink := &collectingSink{fail: 1}
	svc, _ := newTestService(t, sink)

	svc.batch = append(svc.batch, models.LobbyEvent{Action: "Logout", Player: "adam"})
	svc.flush(context.Background())
	assert.Equal(t, 0, sink.count())
	assert.Len(t, svc.batch, 1)

	svc.flush(context.Background())
	assert.Equal(t, 1, sink.count())
	assert.Empty(t, svc.batch)
}

func TestHistorianDropsOldestWhenBacklogged(t *testing.T) {
	sink := &collectingSink{fail: 1}
	svc, _ := newTestService(t, sink)
	svc.maxPending = 2

	for _, p := range []string{"a", "b", "c"} {
		svc.batch = append(svc.batch, models.LobbyEvent{Action: "Login", Player: p})
	}
	svc.flush(context.Background())
	require.Len(t, svc.batch, 2)
	assert.Equal(t, "b", svc.batch[0].Player)
}

func TestHistorianDropsOnlyRejectedEvents(t *testing.T) {
	sink := &collectingSink{reject: "mallory"}
	svc, _ := newTestService(t, sink)

	for _, p := range []string{"adam", "mallory", "eve"} {
		svc.batch = append(svc.batch, models.LobbyEvent{Action: "Login", Player: p})
	}
	svc.flush(context.Background())

	assert.Empty(t, svc.batch)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 2)
	assert.Equal(t, "adam", sink.events[0].Player)
	assert.Equal(t, "eve", sink.events[1].Player)
}

func TestHistorianKeepsEventsWhenRetryFailsTransiently(t *testing.T) {
	// the batch is rejected, then the store goes away during the per-event retry
	sink := &collectingSink{reject: "mallory"}
	svc, _ := newTestService(t, sink)
	svc.sink = func(ctx context.Context, events []models.LobbyEvent) error {
		if len(events) == 1 && events[0].Player == "eve" {
			return errors.New("db down")
		}
		return sink.insert(ctx, events)
	}

	for _, p := range []string{"adam", "mallory", "eve"} {
		svc.batch = append(svc.batch, models.LobbyEvent{Action: "Login", Player: p})
	}
	svc.flush(context.Background())

	require.Len(t, svc.batch, 1)
	assert.Equal(t, "eve", svc.batch[0].Player)
	assert.Equal(t, 1, sink.count())
}
