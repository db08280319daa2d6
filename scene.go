package orrery

import (
	"math"
	"sort"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// SceneSink receives the instructions of the scene. It is implemented by the renderer side.
type SceneSink interface {
	// Place places the object of the body at the position (display units).
	Place(key BodyKey, position Vector3, radius float64, color uint32)
	// Polyline draws the orbit trace of the body.
	Polyline(key BodyKey, points []Vector3, color uint32)
	// Color changes the material color of the body.
	Color(key BodyKey, color uint32)
}

// SceneNode binds a body to its visual representation.
type SceneNode struct {
	Key           BodyKey
	Body          BodyDefinition
	Position      Vector3   // Display units
	Trace         []Vector3 // Nil if the trace could not be computed
	DisplayRadius float64
	Color         uint32 // Current material color
}

// Scene is a single snapshot of the bodies at one instant with their precomputed orbit traces.
// Positions are not updated after the scene is built.
type Scene struct {
	DT    time.Time
	nodes map[BodyKey]*SceneNode
	order []BodyKey
	sink  SceneSink
}

const (
	// BodyRadiusScale exaggerates the body radii so that they remain visible next to their orbits.
	BodyRadiusScale = 1000.0
	// maxDisplayRadiusKm caps the exaggerated radii, otherwise the Sun swallows Mercury.
	maxDisplayRadiusKm = 2e7
)

// BuildScene computes every body at the same instant dt and emits the place and polyline
// instructions to the sink (which may be nil). A body whose trace fails is placed without trace.
func BuildScene(bodies []BodyDefinition, prop *Propagator, dt time.Time, samples int, sink SceneSink, logger kitlog.Logger) *Scene {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "scene")
	s := &Scene{DT: dt.UTC(), nodes: make(map[BodyKey]*SceneNode, len(bodies)), sink: sink}
	for _, b := range bodies {
		key := b.Key()
		if _, dup := s.nodes[key]; dup {
			logger.Log("level", "warning", "body", key, "message", "duplicate body ignored")
			continue
		}
		node := &SceneNode{
			Key:           key,
			Body:          b,
			Position:      prop.CurrentPosition(b, s.DT),
			DisplayRadius: math.Min(b.RadiusKm*BodyRadiusScale, maxDisplayRadiusKm) * prop.Scale,
			Color:         b.ColorHex,
		}
		trace, err := prop.OrbitTrace(b, s.DT, samples)
		if err != nil {
			logger.Log("level", "error", "body", key, "err", err)
		} else {
			node.Trace = trace
		}
		s.nodes[key] = node
		s.order = append(s.order, key)
	}
	s.Emit()
	logger.Log("level", "info", "bodies", len(s.order), "dt", s.DT)
	return s
}

// Emit (re)sends every instruction of the scene to the sink.
func (s *Scene) Emit() {
	if s.sink == nil {
		return
	}
	for _, key := range s.order {
		node := s.nodes[key]
		s.sink.Place(key, node.Position, node.DisplayRadius, node.Color)
		if node.Trace != nil {
			s.sink.Polyline(key, node.Trace, node.Body.ColorHex)
		}
	}
}

// Node returns the node of the provided body.
func (s *Scene) Node(key BodyKey) (*SceneNode, bool) {
	n, ok := s.nodes[key]
	return n, ok
}

// Nodes returns all the nodes in build order.
func (s *Scene) Nodes() []*SceneNode {
	nodes := make([]*SceneNode, len(s.order))
	for i, key := range s.order {
		nodes[i] = s.nodes[key]
	}
	return nodes
}

// Keys returns the sorted body keys of this scene.
func (s *Scene) Keys() []BodyKey {
	keys := append([]BodyKey(nil), s.order...)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SetColor overrides the color of a body. Unchanged colors are not sent again.
func (s *Scene) SetColor(key BodyKey, color uint32) {
	node, ok := s.nodes[key]
	if !ok || node.Color == color {
		return
	}
	node.Color = color
	if s.sink != nil {
		s.sink.Color(key, color)
	}
}

// RestoreColor sets the color of a body back to its nominal color.
func (s *Scene) RestoreColor(key BodyKey) {
	if node, ok := s.nodes[key]; ok {
		s.SetColor(key, node.Body.ColorHex)
	}
}

// Clone returns an independent copy of this scene bound to another sink.
// Traces are shared since they are never modified.
func (s *Scene) Clone(sink SceneSink) *Scene {
	c := &Scene{DT: s.DT, nodes: make(map[BodyKey]*SceneNode, len(s.nodes)), order: append([]BodyKey(nil), s.order...), sink: sink}
	for key, node := range s.nodes {
		cpy := *node
		c.nodes[key] = &cpy
	}
	return c
}
