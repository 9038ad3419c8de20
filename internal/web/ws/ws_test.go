package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/testutil"
	"github.com/mcoot/tarot-go2/internal/web/sse"
	"github.com/mcoot/tarot-go2/internal/wire"
)

type WebSocketSuite struct {
	suite.Suite
	hub       *sse.Hub
	server    *httptest.Server
	mu        sync.Mutex
	submitted []tarot.Action
	submitErr error
	backlog   []model.Delivery
}

func TestWebSocketSuite(t *testing.T) {
	suite.Run(t, new(WebSocketSuite))
}

func (s *WebSocketSuite) SetupTest() {
	s.hub = sse.NewHub("room-1", nil, testutil.NopLogger())
	go s.hub.Run()
	s.submitted = nil
	s.submitErr = nil
	s.backlog = nil

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player := model.PlayerID(r.URL.Query().Get("player"))
		Serve(w, r, s.hub, player, 0, s.loadBacklog, s.submit, testutil.NopLogger())
	}))
}

func (s *WebSocketSuite) TearDownTest() {
	s.server.Close()
	s.hub.Close()
}

func (s *WebSocketSuite) loadBacklog(ctx context.Context, since int64) ([]model.Delivery, error) {
	return s.backlog, nil
}

func (s *WebSocketSuite) submit(ctx context.Context, action tarot.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, action)
	return s.submitErr
}

func (s *WebSocketSuite) dial(player model.PlayerID) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "?player=" + string(player)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *WebSocketSuite) read(conn *websocket.Conn) wire.Envelope {
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	env, err := wire.DecodeEnvelope(data)
	s.Require().NoError(err)
	return env
}

func (s *WebSocketSuite) delivery(seq int64, privateTo model.PlayerID) model.Delivery {
	return model.Delivery{
		Seq:       seq,
		RoomID:    "room-1",
		Type:      "player_ready",
		PrivateTo: privateTo,
		Payload:   json.RawMessage(fmt.Sprintf(`{"type":"player_ready","seq":%d}`, seq)),
	}
}

func (s *WebSocketSuite) waitForClients(n int) {
	s.Require().Eventually(func() bool { return s.hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func (s *WebSocketSuite) TestBacklogThenLiveDeliveries() {
	s.backlog = []model.Delivery{s.delivery(1, "")}
	conn := s.dial("alice")
	s.waitForClients(1)

	s.hub.Broadcast(s.delivery(1, ""))
	s.hub.Broadcast(s.delivery(2, "bob"))
	s.hub.Broadcast(s.delivery(3, "alice"))

	s.Equal(int64(1), s.read(conn).Seq)
	s.Equal(int64(3), s.read(conn).Seq)
}

func (s *WebSocketSuite) TestActionsAreSubmittedForTheConnectedPlayer() {
	conn := s.dial("alice")

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"player_ready"}`)))

	s.Eventually(func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.submitted) == 1
	}, time.Second, 5*time.Millisecond)
	s.Equal(tarot.PlayerReady("alice"), s.submitted[0])
}

func (s *WebSocketSuite) TestMalformedActionGetsAnErrorFrame() {
	conn := s.dial("alice")

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bid","player":"bob","pass":true}`)))

	env := s.read(conn)
	s.Equal(tarot.TransitionError, env.Type)
	s.Equal(int64(0), env.Seq)
	var payload tarot.ErrorPayload
	s.Require().NoError(env.DecodePayload(&payload))
	s.Equal("invalid_action", payload.Code)
	s.Empty(s.submitted)
}

func (s *WebSocketSuite) TestObserversCannotAct() {
	conn := s.dial("")

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"player_ready"}`)))

	var payload tarot.ErrorPayload
	s.Require().NoError(s.read(conn).DecodePayload(&payload))
	s.Equal("player_required", payload.Code)
}

func (s *WebSocketSuite) TestRoomErrorsAreReported() {
	s.submitErr = model.ErrRoomAborted
	conn := s.dial("alice")

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"player_ready"}`)))

	var payload tarot.ErrorPayload
	s.Require().NoError(s.read(conn).DecodePayload(&payload))
	s.Equal("room_aborted", payload.Code)
}

func (s *WebSocketSuite) TestDisconnectUnregisters() {
	conn := s.dial("alice")
	s.waitForClients(1)

	s.Require().NoError(conn.Close())

	s.waitForClients(0)
}
