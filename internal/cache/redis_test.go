package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jason-s-yu/lobbyd/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type JournalSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	rdb *redis.Client
	log *logrus.Logger
}

func (s *JournalSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.log = logrus.New()
	s.log.SetOutput(io.Discard)
}

func (s *JournalSuite) TearDownTest() {
	s.rdb.Close()
}

func (s *JournalSuite) TestConnectRedis() {
	rdb, err := ConnectRedis(context.Background(), s.mr.Addr(), 0)
	s.Require().NoError(err)
	rdb.Close()

	gone, err := miniredis.Run()
	s.Require().NoError(err)
	addr := gone.Addr()
	gone.Close()

	_, err = ConnectRedis(context.Background(), addr, 0)
	s.Error(err)
}

func (s *JournalSuite) TestRunPushesEvents() {
	j := NewJournal(s.rdb, "", s.log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	j.Record(models.LobbyEvent{Action: "Login", Player: "adam"})
	j.Record(models.LobbyEvent{Action: "CreateGame", Player: "adam", Game: "g"})

	s.Eventually(func() bool {
		n, err := s.rdb.LLen(context.Background(), DefaultQueueName).Result()
		return err == nil && n == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	raw, err := s.mr.Lpop(DefaultQueueName)
	s.Require().NoError(err)
	var ev models.LobbyEvent
	s.Require().NoError(json.Unmarshal([]byte(raw), &ev))
	s.Equal("Login", ev.Action)
	s.Equal("adam", ev.Player)
	s.NotEmpty(ev.ID)
	s.NotZero(ev.Timestamp)
}

func (s *JournalSuite) TestDrainOnShutdown() {
	j := NewJournal(s.rdb, "custom", s.log)
	j.Record(models.LobbyEvent{Action: "Logout", Player: "eve"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j.Run(ctx)

	n, err := s.rdb.LLen(context.Background(), "custom").Result()
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *JournalSuite) TestShutdownKeepsEveryQueuedEvent() {
	const perRun = 5
	for run := 0; run < 100; run++ {
		j := NewJournal(s.rdb, "shutdown", s.log)
		for i := 0; i < perRun; i++ {
			j.Record(models.LobbyEvent{Action: "Login", Player: fmt.Sprintf("p%d", i)})
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		j.Run(ctx)

		n, err := s.rdb.LLen(context.Background(), "shutdown").Result()
		s.Require().NoError(err)
		s.Require().EqualValues((run+1)*perRun, n, "run %d", run)
	}
}

func (s *JournalSuite) TestRecordNeverBlocks() {
	j := NewJournal(s.rdb, "", s.log)
	for i := 0; i < defaultBuffer+10; i++ {
		j.Record(models.LobbyEvent{Action: "Login", Player: "adam"})
	}
	s.Len(j.events, defaultBuffer)
}

func TestJournalSuite(t *testing.T) {
	suite.Run(t, new(JournalSuite))
}

func TestNoopJournal(t *testing.T) {
	var r Recorder = NoopJournal{}
	r.Record(models.LobbyEvent{Action: "Login"})
}
