// internal/historian/historian.go drains lobby events from a Redis list and
// persists them in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists one batch of events. It must tolerate a batch being replayed,
// and it wraps ErrRejected when the events themselves cannot be stored.
type Sink func(ctx context.Context, events []models.LobbyEvent) error

// ErrRejected marks a sink failure caused by the data rather than the store.
var ErrRejected = errors.New("lobby events rejected")

// Config controls batching. Zero values pick defaults.
type Config struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
}

// Service pops lobby events from Redis and hands them to a Sink.
type Service struct {
	rdb    *redis.Client
	sink   Sink
	logger *logrus.Logger

	queue      string
	batchSize  int
	flushDelay time.Duration
	maxPending int

	batch     []models.LobbyEvent
	lastFlush time.Time
}

// NewService constructs a historian reading from rdb.
func NewService(rdb *redis.Client, sink Sink, logger *logrus.Logger, cfg Config) *Service {
	if cfg.Queue == "" {
		cfg.Queue = cache.DefaultQueueName
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = 500 * time.Millisecond
	}
	return &Service{
		rdb:        rdb,
		sink:       sink,
		logger:     logger,
		queue:      cfg.Queue,
		batchSize:  cfg.BatchSize,
		flushDelay: cfg.FlushDelay,
		maxPending: cfg.BatchSize * 50,
		batch:      make([]models.LobbyEvent, 0, cfg.BatchSize),
	}
}

// Run pops events until ctx is done and flushes whatever is left.
func (s *Service) Run(ctx context.Context) {
	s.lastFlush = time.Now()
	s.logger.Infof("historian reading redis list %q", s.queue)

	for {
		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			s.logger.Info("historian stopped")
			return
		}

		// BLPop with a timeout so that context cancellation and timed flushes are handled.
		res, err := s.rdb.BLPop(ctx, s.flushDelay, s.queue).Result()
		switch {
		case err == nil && len(res) == 2:
			// res[0] is the queue name and res[1] the payload.
			var ev models.LobbyEvent
			if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
				s.logger.Warnf("invalid lobby event: %v", err)
				break
			}
			s.batch = append(s.batch, ev)
		case err == nil, errors.Is(err, redis.Nil), errors.Is(err, context.Canceled):
		default:
			s.logger.Errorf("BLPop: %v", err)
			time.Sleep(s.flushDelay)
		}

		if len(s.batch) >= s.batchSize || time.Since(s.lastFlush) >= s.flushDelay {
			s.flush(ctx)
		}
	}
}

// flush writes the current batch. A batch the sink rejects is retried one
// event at a time so a bad event cannot hold back the rest. Any other failure
// keeps the batch for the next attempt until maxPending events have piled up,
// after which the oldest are dropped.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	err := s.sink(ctx, s.batch)
	if err == nil {
		s.logger.Debugf("flushed %d lobby events", len(s.batch))
		s.batch = s.batch[:0]
		return
	}
	s.logger.Errorf("flush %d lobby events: %v", len(s.batch), err)
	if errors.Is(err, ErrRejected) {
		s.flushEach(ctx)
	}
	if over := len(s.batch) - s.maxPending; over > 0 {
		s.logger.Warnf("dropping %d unflushed lobby events", over)
		s.batch = append(s.batch[:0], s.batch[over:]...)
	}
}

// flushEach inserts the batch event by event. Rejected events are dropped;
// events that fail for another reason stay queued.
func (s *Service) flushEach(ctx context.Context) {
	kept := s.batch[:0]
	for _, ev := range s.batch {
		err := s.sink(ctx, []models.LobbyEvent{ev})
		switch {
		case err == nil:
		case errors.Is(err, ErrRejected):
			s.logger.WithFields(logrus.Fields{
				"id":     ev.ID,
				"action": ev.Action,
				"player": ev.Player,
			}).Warnf("dropping lobby event: %v", err)
		default:
			kept = append(kept, ev)
		}
	}
	s.batch = kept
}
