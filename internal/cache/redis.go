// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "lobby_events"

const (
	defaultBuffer  = 256
	publishTimeout = 2 * time.Second
	drainTimeout   = 5 * time.Second
)

// ConnectRedis opens a client against addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Recorder accepts committed lobby events. Record must never block.
type Recorder interface {
	Record(ev models.LobbyEvent)
}

// NoopJournal drops every event. Used when Redis is not configured.
type NoopJournal struct{}

func (NoopJournal) Record(models.LobbyEvent) {}

// Journal buffers lobby events in memory and pushes them to a Redis list from a
// single background goroutine started with Run.
type Journal struct {
	rdb    *redis.Client
	queue  string
	events chan models.LobbyEvent
	logger *logrus.Logger
}

// NewJournal creates a Journal pushing to queue. An empty queue uses DefaultQueueName.
func NewJournal(rdb *redis.Client, queue string, logger *logrus.Logger) *Journal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Journal{
		rdb:    rdb,
		queue:  queue,
		events: make(chan models.LobbyEvent, defaultBuffer),
		logger: logger,
	}
}

// Record stamps ev with an ID and timestamp if missing and queues it. When the
// buffer is full the event is dropped with a warning.
func (j *Journal) Record(ev models.LobbyEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	select {
	case j.events <- ev:
	default:
		j.logger.WithFields(logrus.Fields{
			"action": ev.Action,
			"player": ev.Player,
		}).Warn("lobby event journal full, dropping event")
	}
}

// Run pushes queued events until ctx is done, then flushes what is left.
// ctx only stops the loop; pushes run under their own timeout so an event
// already taken off the buffer is not lost to the cancellation.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			j.drain()
			return
		case ev := <-j.events:
			pushCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			err := j.publish(pushCtx, ev)
			cancel()
			if err != nil {
				j.logger.Warnf("lobby event journal: %v", err)
			}
		}
	}
}

func (j *Journal) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-j.events:
			if err := j.publish(ctx, ev); err != nil {
				j.logger.Warnf("lobby event journal: %v", err)
				return
			}
		default:
			return
		}
	}
}

// publish serializes the event to JSON and pushes it to the Redis queue.
func (j *Journal) publish(ctx context.Context, ev models.LobbyEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal LobbyEvent: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queue, err)
	}
	return nil
}
