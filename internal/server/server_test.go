package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/auth"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/service"
	"ctchen222/Tic-Tac-Toe-Solo/internal/bot"
	"ctchen222/Tic-Tac-Toe-Solo/internal/db"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := hub.NewHub(events.NewMemoryBus(), nil, bot.Selector{}, hub.Options{ComputerDelay: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)

	srv := NewServer(h,
		tokens,
		controller.NewUserController(service.NewUserService(repository.NewUserRepository(conn), tokens)),
		controller.NewSessionController(service.NewSessionService(h, nil)),
	)
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts, tokens
}

func readMessage(t *testing.T, ws *websocket.Conn) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg proto.ServerToClientMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func dial(t *testing.T, ts *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if ws != nil {
		t.Cleanup(func() { ws.Close() })
	}
	return ws, resp, err
}

func ptr(i int) *int { return &i }

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	ts, _ := newTestServer(t)

	_, resp, err := dial(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_PlaysAGame(t *testing.T) {
	ts, tokens := newTestServer(t)
	token, err := tokens.Issue("guest-1", "")
	require.NoError(t, err)

	ws, _, err := dial(t, ts, "token="+token)
	require.NoError(t, err)

	initial := readMessage(t, ws)
	require.Equal(t, proto.TypeUpdate, initial.Type)
	require.NotEmpty(t, initial.SessionID)
	assert.Equal(t, game.Board{}, *initial.Board)

	require.NoError(t, ws.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Cell: ptr(0)}))
	afterPlayer := readMessage(t, ws)
	assert.Equal(t, game.PlayerX, afterPlayer.Board[0])

	afterComputer := readMessage(t, ws)
	assert.Equal(t, game.PlayerO, afterComputer.Board[game.Center])
	assert.Equal(t, "player", string(afterComputer.Turn))

	require.NoError(t, ws.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Cell: ptr(4)}))
	rejected := readMessage(t, ws)
	assert.Equal(t, proto.TypeError, rejected.Type)
	assert.NotEmpty(t, rejected.Reason)

	// A second tab on the same session sees the same board.
	second, _, err := dial(t, ts, "token="+token+"&session="+initial.SessionID)
	require.NoError(t, err)
	mirror := readMessage(t, second)
	assert.Equal(t, initial.SessionID, mirror.SessionID)
	assert.Equal(t, *afterComputer.Board, *mirror.Board)
}

func TestWebSocket_ForeignSessionIsRejected(t *testing.T) {
	ts, tokens := newTestServer(t)
	owner, err := tokens.Issue("guest-1", "")
	require.NoError(t, err)
	intruder, err := tokens.Issue("guest-2", "")
	require.NoError(t, err)

	ws, _, err := dial(t, ts, "token="+owner)
	require.NoError(t, err)
	initial := readMessage(t, ws)

	other, _, err := dial(t, ts, "token="+intruder+"&session="+initial.SessionID)
	require.NoError(t, err)
	msg := readMessage(t, other)
	assert.Equal(t, proto.TypeError, msg.Type)

	_, _, err = other.ReadMessage()
	assert.Error(t, err, "connection is closed after the rejection")
}

func TestREST_GuestFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/guest", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Extras struct {
			Token string `json:"token"`
		} `json:"extras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Extras.Token)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+body.Extras.Token)
	created, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer created.Body.Close()
	assert.Equal(t, http.StatusCreated, created.StatusCode)
}
