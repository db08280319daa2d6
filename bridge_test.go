package orrery

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, metrics *Metrics) *App {
	t.Helper()
	t.Setenv(ConfigEnv, "")
	conf, err := LoadConfig(nil, "")
	require.NoError(t, err)
	conf.TraceSamples = 12
	app, err := NewApp(conf, testDT, metrics, nil)
	require.NoError(t, err)
	return app
}

func dial(t *testing.T, app *App) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewBridge(app, nil))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) BridgeMessage {
	t.Helper()
	var msg BridgeMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBridgeSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	app := newTestApp(t, metrics)
	conn := dial(t, app)

	axes := readMessage(t, conn)
	assert.Equal(t, MsgAxes, axes.Type)
	assert.Equal(t, AxesLength, axes.Length)
	placed := map[BodyKey]bool{}
	for i := 0; i < 2*len(Bodies()); i++ {
		msg := readMessage(t, conn)
		switch msg.Type {
		case MsgPlace:
			require.NotNil(t, msg.Position)
			placed[msg.Key] = true
		case MsgPolyline:
			assert.Len(t, msg.Points, 13)
			assert.True(t, placed[msg.Key], "placed before its trace")
		default:
			t.Fatalf("unexpected %s message", msg.Type)
		}
	}
	assert.Len(t, placed, 10)

	require.NoError(t, conn.WriteJSON(FrameInput{Hits: []Hit{{Tag: "earth", Distance: 3}}, MouseDown: true}))
	color := readMessage(t, conn)
	assert.Equal(t, BridgeMessage{Type: MsgColor, Key: "earth", Color: DefaultHighlightColor}, color)
	dialog := readMessage(t, conn)
	assert.Equal(t, MsgDialog, dialog.Type)
	assert.True(t, dialog.Open)
	require.NotNil(t, dialog.Content)
	assert.Equal(t, "Earth", dialog.Content.Title)
	state := readMessage(t, conn)
	require.Equal(t, MsgState, state.Type)
	assert.Equal(t, BodyKey("earth"), state.State.DialogOpenFor)
	assert.Equal(t, CursorPointer, state.State.Cursor)

	require.NoError(t, conn.WriteJSON(FrameInput{}))
	restored := readMessage(t, conn)
	assert.Equal(t, BridgeMessage{Type: MsgColor, Key: "earth", Color: Earth.ColorHex}, restored)
	closed := readMessage(t, conn)
	assert.Equal(t, MsgDialog, closed.Type)
	assert.False(t, closed.Open)
	state = readMessage(t, conn)
	assert.Equal(t, BodyKey(""), state.State.DialogOpenFor)
	assert.Equal(t, CursorDefault, state.State.Cursor)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.dialogOpens.WithLabelValues("earth")))
}

func TestBridgeSessionsIndependent(t *testing.T) {
	app := newTestApp(t, nil)
	first := dial(t, app)
	for i := 0; i < 21; i++ {
		readMessage(t, first)
	}
	require.NoError(t, first.WriteJSON(FrameInput{Hits: []Hit{{Tag: "mars"}}}))
	assert.Equal(t, MsgColor, readMessage(t, first).Type)
	assert.Equal(t, MsgState, readMessage(t, first).Type)

	second := dial(t, app)
	for i := 0; i < 21; i++ {
		msg := readMessage(t, second)
		if msg.Type == MsgPlace && msg.Key == "mars" {
			assert.Equal(t, Mars.ColorHex, msg.Color, "the highlight of another session leaked")
		}
	}
	node, _ := app.Scene.Node("mars")
	assert.Equal(t, Mars.ColorHex, node.Color)
}
