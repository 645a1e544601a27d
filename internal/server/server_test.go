package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroomlabs/holdem/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv := New("127.0.0.1:0", testLogger())
	seed := int64(0)
	registry := game.NewRegistry(game.DefaultConfig(), quartz.NewReal(), srv, testLogger(), func() int64 {
		seed++
		return seed
	})
	srv.SetRegistry(registry)
	go srv.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Stop()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, data interface{}) {
	t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// waitFor reads frames until one of the wanted type arrives, failing the
// test if it does not show up in time.
func waitFor(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
		if msg.Type == MessageTypeError {
			var data ErrorData
			_ = json.Unmarshal(msg.Data, &data)
			t.Fatalf("got error %q while waiting for %s: %s", data.Code, want, data.Message)
		}
	}
}

func authAndJoin(t *testing.T, conn *websocket.Conn, name, table string) {
	t.Helper()
	send(t, conn, MessageTypeAuth, AuthData{PlayerName: name})
	waitFor(t, conn, MessageTypeAuthResponse)
	send(t, conn, MessageTypeJoinTable, JoinTableData{TableID: table})
	waitFor(t, conn, MessageTypeTableJoined)
}

func TestServerHealth(t *testing.T) {
	srv := New("127.0.0.1:0", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestTablesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.registry.Table("lobby")

	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	w := httptest.NewRecorder()
	srv.handleTables(w, req)

	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	var data TableListData
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Len(t, data.Tables, 1)
	assert.Equal(t, "lobby", data.Tables[0].ID)
	assert.Equal(t, "waiting", data.Tables[0].Status)
}

func TestAuthRequiredBeforeJoin(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, MessageTypeJoinTable, JoinTableData{TableID: "table1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MessageTypeError, msg.Type)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "not_authenticated", data.Code)
}

func TestJoinBroadcastsTableState(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, MessageTypeAuth, AuthData{PlayerName: "alice"})
	auth := waitFor(t, conn, MessageTypeAuthResponse)
	var authData AuthResponseData
	require.NoError(t, json.Unmarshal(auth.Data, &authData))
	require.True(t, authData.Success)

	send(t, conn, MessageTypeJoinTable, JoinTableData{TableID: "table1"})

	state := waitFor(t, conn, MessageTypeTableState)
	var snapshot game.TableSnapshot
	require.NoError(t, json.Unmarshal(state.Data, &snapshot))
	require.Len(t, snapshot.Seats, 1)
	assert.Equal(t, "alice", snapshot.Seats[0].Name)
	assert.Equal(t, 200, snapshot.Seats[0].Chips)

	joined := waitFor(t, conn, MessageTypeTableJoined)
	var joinedData TableJoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &joinedData))
	assert.Equal(t, 0, joinedData.Seat)
}

func TestStartHandDealsCardsAndPrompts(t *testing.T) {
	_, ts := newTestServer(t)

	alice := dial(t, ts)
	bob := dial(t, ts)
	authAndJoin(t, alice, "alice", "table1")
	authAndJoin(t, bob, "bob", "table1")

	send(t, alice, MessageTypeStartHand, StartHandData{TableID: "table1"})

	// Both players get exactly their own two cards.
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := waitFor(t, conn, MessageTypeHoleCards)
		var data HoleCardsData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		require.Len(t, data.Cards, 2)
	}

	// Alice is the heads-up dealer and small blind, so she is prompted.
	prompt := waitFor(t, alice, MessageTypeActionRequired)
	var promptData ActionRequiredData
	require.NoError(t, json.Unmarshal(prompt.Data, &promptData))
	assert.Equal(t, 1, promptData.Prompt.ToCall)
	assert.False(t, promptData.Prompt.CanCheck)

	// Folding ends the hand; both clients learn the result.
	send(t, alice, MessageTypeAction, ActionData{TableID: "table1", Action: "fold"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := waitFor(t, conn, MessageTypeHandResult)
		var data HandResultData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		require.Len(t, data.Result.Winners, 1)
		assert.Equal(t, "bob", data.Result.Winners[0].Name)
	}
}

func TestInvalidActionGetsError(t *testing.T) {
	_, ts := newTestServer(t)

	alice := dial(t, ts)
	bob := dial(t, ts)
	authAndJoin(t, alice, "alice", "table1")
	authAndJoin(t, bob, "bob", "table1")

	send(t, alice, MessageTypeStartHand, StartHandData{TableID: "table1"})
	waitFor(t, alice, MessageTypeActionRequired)

	// Bob tries to act out of turn.
	send(t, bob, MessageTypeAction, ActionData{TableID: "table1", Action: "call"})

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, bob.ReadJSON(&msg))
		if msg.Type != MessageTypeError {
			continue
		}
		var data ErrorData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "action_failed", data.Code)
		break
	}
}

func TestLeaveTableStopsBroadcasts(t *testing.T) {
	_, ts := newTestServer(t)

	alice := dial(t, ts)
	authAndJoin(t, alice, "alice", "table1")

	send(t, alice, MessageTypeLeaveTable, LeaveTableData{TableID: "table1"})
	waitFor(t, alice, MessageTypeTableLeft)
}

func TestUpgradeAfterStopClosesConnection(t *testing.T) {
	srv := New("127.0.0.1:0", testLogger())
	registry := game.NewRegistry(game.DefaultConfig(), quartz.NewReal(), srv, testLogger(), func() int64 { return 1 })
	srv.SetRegistry(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	// The run loop never started and the context is cancelled, as after
	// Stop. The upgrade must be closed out rather than left hanging on
	// the register channel.
	require.NoError(t, srv.Stop())

	conn := dial(t, ts)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "connection should be closed promptly after shutdown")
}
