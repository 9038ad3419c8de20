package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tarot-go2/internal/api"
	"github.com/mcoot/tarot-go2/internal/api/apierr"
	"github.com/mcoot/tarot-go2/internal/api/middleware"
	"github.com/mcoot/tarot-go2/internal/api/response"
	"github.com/mcoot/tarot-go2/internal/factory"
	"github.com/mcoot/tarot-go2/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.Rooms,
		BotService: app.BotService,
		Hubs:       app.HubManager,
		Metrics:    app.Metrics,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, player string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set(middleware.PlayerIDHeader, player)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createRoom(t *testing.T, body any) response.Room {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/rooms", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var room response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &room))
	return room
}

func (ts *testServer) act(t *testing.T, roomID, player, action string) response.Deliveries {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+roomID+"/actions", action, player)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var ds response.Deliveries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ds))
	return ds
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error.Code
}

// phase reads the phase from a room state response; the board state itself is a sealed union
func phase(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var state struct {
		View struct {
			Phase string `json:"phase"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state.View.Phase
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestHealthCheckEchoesRequestID(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, map[string]any{"name": "metrics"})

	rr := ts.request(http.MethodGet, "/metrics", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "tarot_active_rooms 1")
}

func TestCreateAndGetRoom(t *testing.T) {
	ts := newTestServer(t)

	room := ts.createRoom(t, map[string]any{
		"name":         "Friday",
		"gameSettings": map[string]bool{"autologEnabled": true},
	})
	assert.Equal(t, "Friday", room.Name)
	assert.Equal(t, "open", room.Status)
	assert.True(t, room.GameSettings.AutologEnabled)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, room.ID, got.ID)
}

func TestCreateRoomValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/rooms", "{", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms", map[string]string{"name": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRoom, errorCode(t, rr))
}

func TestListRooms(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, map[string]string{"name": "one"})
	ts.createRoom(t, map[string]string{"name": "two"})

	rr := ts.request(http.MethodGet, "/api/v1/rooms", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.RoomList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Rooms, 2)
}

func TestUnknownRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeRoomNotFound, errorCode(t, rr))
}

func TestActionsRequireAPlayer(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "anon"})

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"enter_game"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodePlayerRequired, errorCode(t, rr))
}

func TestInvalidPlayerID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms", nil, strings.Repeat("x", middleware.MaxPlayerIDLength+1))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMalformedAction(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "bad"})

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"dance"}`, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidAction, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"enter_game","player":"bob"}`, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEngineRejection(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "reject"})

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"player_ready"}`, "alice")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "PLAYER_NOT_IN_GAME", errorCode(t, rr))
}

func TestPlayersDealAHand(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "deal"})
	players := []string{"alice", "bob", "carol"}

	for _, p := range players {
		ds := ts.act(t, room.ID, p, `{"type":"enter_game"}`)
		require.Len(t, ds.Deliveries, 1)
		assert.Equal(t, "player_entered", ds.Deliveries[0].Type)
	}
	for _, p := range players[:2] {
		ts.act(t, room.ID, p, `{"type":"player_ready"}`)
	}
	ds := ts.act(t, room.ID, "carol", `{"type":"player_ready"}`)

	// Carol sees the public transitions and only her own new hand
	for _, d := range ds.Deliveries {
		if d.PrivateTo != "" {
			assert.Equal(t, "carol", d.PrivateTo)
		}
	}

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/state", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bidding", phase(t, rr))

	// Out of turn: bob bids first in a three player game dealt by alice
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"bid","pass":true}`, "carol")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "OUT_OF_TURN", errorCode(t, rr))
}

func TestHistory(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "history"})
	ts.act(t, room.ID, "alice", `{"type":"enter_game"}`)
	ts.act(t, room.ID, "bob", `{"type":"enter_game"}`)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/history?since=1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var ds response.Deliveries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ds))
	require.Len(t, ds.Deliveries, 1)
	assert.Equal(t, int64(2), ds.Deliveries[0].Seq)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/history?since=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNextHandWhileInProgress(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "next"})

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/next-hand", nil, "alice")

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeHandInProgress, errorCode(t, rr))
}

func TestCloseRoom(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "close"})

	rr := ts.request(http.MethodDelete, "/api/v1/rooms/"+room.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/actions", `{"type":"enter_game"}`, "alice")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, apierr.CodeRoomClosed, errorCode(t, rr))
}

func TestBotStrategies(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/bots/strategies", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var strategies response.Strategies
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &strategies))
	assert.Len(t, strategies.Strategies, 2)
}

func TestBotsPlayWithAHuman(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]any{
		"name":         "bots",
		"gameSettings": map[string]bool{"autologEnabled": true},
	})

	for _, strategy := range []string{"random", "greedy"} {
		rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/bots", map[string]string{"strategy": strategy}, "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var added response.BotAdded
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
		assert.Equal(t, strategy, added.Strategy)
		assert.True(t, strings.HasPrefix(added.PlayerID, "bot-"))
	}

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+room.ID+"/bots", map[string]string{"strategy": "psychic"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownBotStrategy, errorCode(t, rr))

	ts.act(t, room.ID, "alice", `{"type":"enter_game"}`)
	ts.act(t, room.ID, "alice", `{"type":"player_ready"}`)

	// The bots were waiting on alice; now they have dealt and bid as far as they can alone
	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/state", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, "new_game", phase(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID, nil, "")
	var got response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Bots, 2)
}

func TestHandsOfANewRoom(t *testing.T) {
	ts := newTestServer(t)
	room := ts.createRoom(t, map[string]string{"name": "hands"})

	rr := ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/hands", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var hands response.Hands
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hands))
	assert.Empty(t, hands.Hands)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/hands/1", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeHandNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+room.ID+"/hands/first", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
