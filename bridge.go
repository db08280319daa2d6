package orrery

import (
	"net/http"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gorilla/websocket"
)

// Message types sent to the renderer.
const (
	MsgPlace    = "place"
	MsgPolyline = "polyline"
	MsgColor    = "color"
	MsgAxes     = "axes"
	MsgDialog   = "dialog"
	MsgState    = "state"
)

// BridgeMessage is one instruction sent to the renderer.
type BridgeMessage struct {
	Type     string            `json:"type"`
	Key      BodyKey           `json:"key,omitempty"`
	Position *Vector3          `json:"position,omitempty"`
	Radius   float64           `json:"radius,omitempty"`
	Color    uint32            `json:"color"`
	Points   []Vector3         `json:"points,omitempty"`
	Length   float64           `json:"length,omitempty"`
	Open     bool              `json:"open,omitempty"`
	Content  *Content          `json:"content,omitempty"`
	State    *InteractionState `json:"state,omitempty"`
}

// FrameInput is what the renderer sends every frame: the tagged hits of the pointer ray and the button state.
type FrameInput struct {
	Hits      []Hit `json:"hits"`
	MouseDown bool  `json:"mouseDown"`
}

// Bridge is the websocket endpoint of a browser renderer. Each connection gets its own session.
type Bridge struct {
	app      *App
	upgrader websocket.Upgrader
	logger   kitlog.Logger
}

// NewBridge returns a new Bridge serving the app.
func NewBridge(app *App, logger kitlog.Logger) *Bridge {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Bridge{
		app:      app,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1 << 16},
		logger:   kitlog.With(logger, "subsys", "bridge"),
	}
}

// ServeHTTP upgrades the connection, sends the scene and then resolves every frame received.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Log("level", "warning", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()
	logger := kitlog.With(b.logger, "remote", r.RemoteAddr)
	logger.Log("level", "info", "status", "connected")

	sink := &wsSink{conn: conn}
	if sink.send(BridgeMessage{Type: MsgAxes, Length: AxesLength}); sink.err != nil {
		logger.Log("level", "warning", "err", sink.err)
		return
	}
	_, inter := b.app.NewSession(sink, nil)
	inter.OnDialog(func(ev DialogEvent) {
		msg := BridgeMessage{Type: MsgDialog, Key: ev.Key, Open: ev.Open}
		if ev.Open {
			content := ev.Content
			msg.Content = &content
		}
		sink.send(msg)
	})
	for {
		var in FrameInput
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log("level", "warning", "err", err)
			}
			break
		}
		state := inter.Resolve(in.Hits, in.MouseDown)
		sink.send(BridgeMessage{Type: MsgState, State: &state})
		if sink.err != nil {
			logger.Log("level", "warning", "err", sink.err)
			break
		}
	}
	logger.Log("level", "info", "status", "disconnected")
}

// wsSink writes the scene instructions to the connection. It keeps the first write error.
type wsSink struct {
	conn *websocket.Conn
	err  error
}

func (s *wsSink) send(msg BridgeMessage) {
	if s.err != nil {
		return
	}
	s.err = s.conn.WriteJSON(msg)
}

func (s *wsSink) Place(key BodyKey, position Vector3, radius float64, color uint32) {
	s.send(BridgeMessage{Type: MsgPlace, Key: key, Position: &position, Radius: radius, Color: color})
}

func (s *wsSink) Polyline(key BodyKey, points []Vector3, color uint32) {
	s.send(BridgeMessage{Type: MsgPolyline, Key: key, Points: points, Color: color})
}

func (s *wsSink) Color(key BodyKey, color uint32) {
	s.send(BridgeMessage{Type: MsgColor, Key: key, Color: color})
}
