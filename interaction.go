package orrery

import (
	"context"
	"math"

	kitlog "github.com/go-kit/kit/log"
	"github.com/maniartech/signals"
)

// DefaultHighlightColor is the color of the bodies under the pointer.
const DefaultHighlightColor uint32 = 0xffff00

// Cursor is the pointer indicator requested from the renderer.
type Cursor string

// Cursors
const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
)

// Phase is the state of the interaction.
type Phase uint8

// Phases
const (
	Idle Phase = iota
	Hovering
	Pressed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Pressed:
		return "pressed"
	default:
		panic("unknown phase")
	}
}

// Ray is the pointer ray, in display units.
type Ray struct {
	Origin, Direction Vector3
}

// Hit is one intersection of the pointer ray with a tagged scene node.
type Hit struct {
	Tag      string  `json:"tag"`
	Distance float64 `json:"distance"`
}

// IntersectFunc returns every intersection of the ray with the nodes, in any order.
type IntersectFunc func(ray Ray, nodes []*SceneNode) []Hit

// SphereIntersect intersects the ray with a sphere of display radius around each node.
func SphereIntersect(ray Ray, nodes []*SceneNode) []Hit {
	dir := ray.Direction.Unit()
	if dir.Norm() == 0 {
		return nil
	}
	var hits []Hit
	for _, node := range nodes {
		oc := ray.Origin.Sub(node.Position)
		b := oc.Dot(dir)
		c := oc.Dot(oc) - node.DisplayRadius*node.DisplayRadius
		Δ := b*b - c
		if Δ < 0 {
			continue
		}
		t := -b - math.Sqrt(Δ)
		if t < 0 {
			// Origin inside the sphere.
			t = -b + math.Sqrt(Δ)
		}
		if t < 0 {
			continue
		}
		hits = append(hits, Hit{Tag: string(node.Key), Distance: t})
	}
	return hits
}

// InteractionState is the outcome of one frame.
type InteractionState struct {
	Hovered       BodyKey   `json:"hovered,omitempty"`
	Highlighted   []BodyKey `json:"highlighted,omitempty"`
	MouseDown     bool      `json:"mouseDown"`
	DialogOpenFor BodyKey   `json:"dialogOpenFor,omitempty"`
	Cursor        Cursor    `json:"cursor"`
}

// Phase returns the phase of the interaction.
func (s InteractionState) Phase() Phase {
	switch {
	case s.Hovered == "":
		return Idle
	case s.MouseDown:
		return Pressed
	default:
		return Hovering
	}
}

// DialogEvent is published whenever the detail dialog opens or closes.
type DialogEvent struct {
	Key     BodyKey
	Open    bool
	Content Content
}

// Interaction is the pointer driven state machine. It is owned by a single rendering loop.
type Interaction struct {
	HighlightColor uint32
	scene          *Scene
	intersect      IntersectFunc
	content        ContentLookup
	state          InteractionState
	dialog         Content
	dialogs        signals.Signal[DialogEvent]
	metrics        *Metrics
	logger         kitlog.Logger
}

// NewInteraction returns an idle Interaction on the scene. A nil intersect defaults to SphereIntersect.
func NewInteraction(scene *Scene, intersect IntersectFunc, content ContentLookup, logger kitlog.Logger) *Interaction {
	if intersect == nil {
		intersect = SphereIntersect
	}
	if content == nil {
		content = (*ContentStore)(nil)
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Interaction{
		HighlightColor: DefaultHighlightColor,
		scene:          scene,
		intersect:      intersect,
		content:        content,
		state:          InteractionState{Cursor: CursorDefault},
		dialogs:        signals.NewSync[DialogEvent](),
		logger:         kitlog.With(logger, "subsys", "interact"),
	}
}

// SetMetrics records the transitions in m.
func (m *Interaction) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
}

// OnDialog registers a listener called synchronously on every dialog transition.
func (m *Interaction) OnDialog(fn func(DialogEvent)) {
	m.dialogs.AddListener(func(_ context.Context, ev DialogEvent) {
		fn(ev)
	})
}

// State returns the current state.
func (m *Interaction) State() InteractionState {
	return m.state
}

// Dialog returns the content of the open dialog, if any.
func (m *Interaction) Dialog() (Content, bool) {
	return m.dialog, m.state.DialogOpenFor != ""
}

// Tick runs one frame: the ray is intersected with every node of the scene and the hits are resolved.
func (m *Interaction) Tick(ray Ray, mouseDown bool) InteractionState {
	return m.Resolve(m.intersect(ray, m.scene.Nodes()), mouseDown)
}

// Resolve derives the whole visual state of this frame from its hits and the button state.
// Every hit matching a body is highlighted; nothing is remembered from previous frames
// except which dialog is open, so that reopening it is a no-op.
func (m *Interaction) Resolve(hits []Hit, mouseDown bool) InteractionState {
	m.metrics.Frame()
	matched := make(map[BodyKey]bool, len(hits))
	var order []BodyKey
	for _, h := range hits {
		key := KeyOf(h.Tag)
		if _, ok := m.scene.Node(key); !ok || matched[key] {
			continue
		}
		matched[key] = true
		order = append(order, key)
	}

	m.state.MouseDown = mouseDown
	if len(order) == 0 {
		m.state.Cursor = CursorDefault
		m.state.Hovered = ""
		m.state.Highlighted = nil
		for _, node := range m.scene.Nodes() {
			m.scene.RestoreColor(node.Key)
		}
		m.setDialog("")
		return m.State()
	}

	for _, node := range m.scene.Nodes() {
		if !matched[node.Key] {
			m.scene.RestoreColor(node.Key)
		}
	}
	var dialogFor BodyKey
	for _, key := range order {
		if node, _ := m.scene.Node(key); node.Color != m.HighlightColor {
			m.metrics.Highlight(key)
		}
		m.scene.SetColor(key, m.HighlightColor)
		if !mouseDown {
			continue
		}
		if _, ok := m.content.Lookup(key); !ok {
			continue
		}
		if dialogFor == "" || key == m.state.DialogOpenFor {
			dialogFor = key
		}
	}
	m.state.Cursor = CursorPointer
	m.state.Hovered = order[0]
	m.state.Highlighted = order
	m.setDialog(dialogFor)
	return m.State()
}

func (m *Interaction) setDialog(key BodyKey) {
	prev := m.state.DialogOpenFor
	if prev == key {
		return
	}
	if prev != "" {
		m.state.DialogOpenFor = ""
		closed := m.dialog
		m.dialog = Content{}
		m.logger.Log("level", "debug", "dialog", "closed", "body", prev)
		m.dialogs.Emit(context.Background(), DialogEvent{Key: prev, Open: false, Content: closed})
	}
	if key == "" {
		return
	}
	content, ok := m.content.Lookup(key)
	if !ok {
		return
	}
	m.state.DialogOpenFor = key
	m.dialog = content
	m.metrics.DialogOpened(key)
	m.logger.Log("level", "debug", "dialog", "opened", "body", key)
	m.dialogs.Emit(context.Background(), DialogEvent{Key: key, Open: true, Content: content})
}
