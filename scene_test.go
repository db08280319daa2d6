package orrery

import (
	"bytes"
	"testing"

	kitlog "github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScene(t *testing.T) {
	rec := newRecorder()
	prop := NewPropagator(DefaultCatalog(nil), nil, DefaultDisplayScale, nil)
	scene := BuildScene(Bodies(), prop, testDT, 36, rec, nil)
	require.Len(t, scene.Nodes(), 10)
	assert.Equal(t, []BodyKey{"earth", "jupiter", "mars", "mercury", "neptune", "pluto", "saturn", "sun", "uranus", "venus"}, scene.Keys())
	assert.Equal(t, Sun.Key(), scene.Nodes()[0].Key)
	for _, b := range Bodies() {
		node, ok := scene.Node(b.Key())
		require.True(t, ok, b.Name)
		assert.Equal(t, prop.CurrentPosition(b, testDT), node.Position, b.Name)
		assert.Equal(t, node.Position, rec.placed[b.Key()], b.Name)
		assert.Len(t, rec.traces[b.Key()], 37, b.Name)
		assert.Equal(t, b.ColorHex, node.Color)
		assert.True(t, node.DisplayRadius > 0)
	}
	sun, _ := scene.Node("sun")
	mercury, _ := scene.Node("mercury")
	assert.Less(t, sun.DisplayRadius, mercury.Trace[0].Norm(), "the Sun must not swallow Mercury")
	// All the bodies are computed at the same instant.
	assert.Equal(t, testDT, scene.DT)
}

func TestBuildSceneTraceFailure(t *testing.T) {
	var buf bytes.Buffer
	cat := DefaultCatalog(nil)
	mars := cat["mars"]
	mars.A = 0
	cat["mars"] = mars
	rec := newRecorder()
	prop := NewPropagator(cat, nil, DefaultDisplayScale, nil)
	scene := BuildScene(Bodies(), prop, testDT, 12, rec, kitlog.NewLogfmtLogger(&buf))

	node, ok := scene.Node("mars")
	require.True(t, ok, "mars is still placed")
	assert.Nil(t, node.Trace)
	_, traced := rec.traces["mars"]
	assert.False(t, traced)
	assert.Contains(t, rec.placed, BodyKey("mars"))
	assert.Len(t, rec.traces, 9)
	assert.Contains(t, buf.String(), "degenerate orbit for 'mars'")
}

func TestBuildSceneDuplicates(t *testing.T) {
	prop := NewPropagator(nil, nil, 0, nil)
	scene := BuildScene([]BodyDefinition{Earth, Mars, Earth}, prop, testDT, 4, nil, nil)
	assert.Equal(t, []BodyKey{"earth", "mars"}, scene.Keys())
}

func TestSceneColors(t *testing.T) {
	rec := newRecorder()
	scene := BuildScene([]BodyDefinition{Earth, Mars}, NewPropagator(nil, nil, 0, nil), testDT, 4, rec, nil)
	scene.SetColor("earth", 0x123456)
	scene.SetColor("earth", 0x123456)
	scene.SetColor("vulcan", 0x123456)
	scene.RestoreColor("mars")
	assert.Equal(t, []colorChange{{"earth", 0x123456}}, rec.changes)
	scene.RestoreColor("earth")
	assert.Equal(t, Earth.ColorHex, rec.colors["earth"])
	node, _ := scene.Node("earth")
	assert.Equal(t, Earth.ColorHex, node.Color)
}

func TestSceneClone(t *testing.T) {
	scene := BuildScene(Bodies(), NewPropagator(nil, nil, 0, nil), testDT, 4, nil, nil)
	rec := newRecorder()
	clone := scene.Clone(rec)
	assert.Empty(t, rec.placed, "cloning does not emit")
	clone.Emit()
	assert.Len(t, rec.placed, 10)
	clone.SetColor("earth", 0xffffff)
	orig, _ := scene.Node("earth")
	assert.Equal(t, Earth.ColorHex, orig.Color, "sessions do not share colors")
	cloned, _ := clone.Node("earth")
	assert.Equal(t, uint32(0xffffff), cloned.Color)
}
