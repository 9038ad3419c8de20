package factory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tarot-go2/internal/config"
	"github.com/mcoot/tarot-go2/internal/model"
	redisstorage "github.com/mcoot/tarot-go2/internal/storage/redis"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/web/sse"
)

type recordingConn struct {
	mu       sync.Mutex
	subjects []string
}

func (c *recordingConn) Publish(subject string, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append(c.subjects, subject)
	return nil
}

func (c *recordingConn) Subscribe(subject string, _ natsgo.MsgHandler) (*natsgo.Subscription, error) {
	return &natsgo.Subscription{Subject: subject}, nil
}

func (c *recordingConn) published() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.subjects...)
}

type FactorySuite struct {
	suite.Suite
	conn *recordingConn
	app  *TestApp
	ctx  context.Context
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	s.conn = &recordingConn{}
	s.app = NewTestApp(s.conn)
	s.ctx = context.Background()
}

func (s *FactorySuite) TearDownTest() {
	s.app.Close()
}

func (s *FactorySuite) TestNewDefaultsToMemory() {
	app, err := New(Config{})
	s.Require().NoError(err)
	defer app.Close()

	s.NotNil(app.Rooms)
	s.NotNil(app.BotService)
	s.Nil(app.NatsSink)
	s.Nil(app.ActionListener)
}

func (s *FactorySuite) TestNewRejectsUnknownStorage() {
	settings := config.Default()
	settings.Server.StorageType = "sqlite"

	_, err := New(Config{Settings: settings})

	s.Error(err)
}

func (s *FactorySuite) TestNewWithRedis() {
	mr := miniredis.RunT(s.T())
	settings := config.Default()
	settings.Server.StorageType = config.StorageTypeRedis
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()

	app, err := New(Config{Settings: settings, RedisConfig: &redisCfg})
	s.Require().NoError(err)
	defer app.Close()

	r, err := app.Rooms.CreateRoom(s.ctx, "redis room", model.GameSettings{})
	s.Require().NoError(err)

	stored, err := app.Storage.GetRoom(s.ctx, r.ID())
	s.Require().NoError(err)
	s.Equal("redis room", stored.Name)
}

func (s *FactorySuite) TestNatsWiringStartsTheListener() {
	s.Require().NotNil(s.app.NatsSink)
	s.Require().NotNil(s.app.ActionListener)
}

func (s *FactorySuite) TestSubmitFansOutToEveryTransport() {
	s.app.MockRandom.QueueUint64(3)
	r, err := s.app.Rooms.CreateRoom(s.ctx, "fan out", model.GameSettings{})
	s.Require().NoError(err)

	hub := s.app.HubManager.GetOrCreateHub(r.ID())
	client := sse.NewClient(hub, "alice", sse.TransportSSE)
	s.Require().True(hub.Register(client))
	s.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.Require().NoError(s.app.Submit(s.ctx, r.ID(), tarot.EnterGame("alice")))

	select {
	case d := <-client.Deliveries():
		s.Equal(int64(1), d.Seq)
		s.Equal(string(tarot.TransitionPlayerEntered), d.Type)
	case <-time.After(time.Second):
		s.Fail("no delivery on the hub")
	}

	published := s.conn.published()
	s.Require().NotEmpty(published)
	s.True(strings.HasSuffix(published[0], ".public"))
}

func (s *FactorySuite) TestSubmitReportsRejections() {
	s.app.MockRandom.QueueUint64(3)
	r, err := s.app.Rooms.CreateRoom(s.ctx, "rejections", model.GameSettings{})
	s.Require().NoError(err)

	err = s.app.Submit(s.ctx, r.ID(), tarot.PlayerReady("alice"))

	s.ErrorIs(err, tarot.ErrPlayerNotInGame)
}

func (s *FactorySuite) TestSubmitUnknownRoom() {
	err := s.app.Submit(s.ctx, "missing", tarot.EnterGame("alice"))

	s.ErrorIs(err, model.ErrRoomNotFound)
}
