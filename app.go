package orrery

import (
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// AxesLength is the length of the axes helper, in display units.
const AxesLength = 3.0

// App holds the whole state of the model. There is one App per process, built once at startup
// from a single instant, and one session (scene copy and interaction) per renderer.
type App struct {
	Config     Config
	DT         time.Time
	Catalog    Catalog
	Propagator *Propagator
	Content    ContentLookup
	Scene      *Scene
	Metrics    *Metrics
	logger     kitlog.Logger
}

// NewApp loads the catalog and the content, and builds the scene at dt. Metrics may be nil.
func NewApp(conf Config, dt time.Time, metrics *Metrics, logger kitlog.Logger) (*App, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	var cat Catalog
	if conf.CatalogPath == "" {
		cat = DefaultCatalog(logger)
	} else {
		cat = LoadCatalogFile(conf.CatalogPath, logger)
	}
	var (
		content *ContentStore
		err     error
	)
	if conf.ContentPath == "" {
		content, err = DefaultContent(Bodies())
	} else {
		content, err = LoadContentFile(conf.ContentPath, Bodies())
	}
	if err != nil {
		return nil, err
	}
	logger.Log("level", "info", "subsys", "content", "entries", content.Len())
	prop := NewPropagator(cat, KeplerianEphemeris, conf.Scale, logger)
	scene := BuildScene(Bodies(), prop, dt, conf.TraceSamples, nil, logger)
	for _, node := range scene.Nodes() {
		if node.Trace == nil {
			metrics.TraceFailed(node.Key)
		}
	}
	return &App{
		Config:     conf,
		DT:         scene.DT,
		Catalog:    cat,
		Propagator: prop,
		Content:    content,
		Scene:      scene,
		Metrics:    metrics,
		logger:     logger,
	}, nil
}

// NewSession returns a copy of the scene bound to the sink, with every instruction already emitted,
// and an idle interaction on that copy.
func (a *App) NewSession(sink SceneSink, intersect IntersectFunc) (*Scene, *Interaction) {
	scene := a.Scene.Clone(sink)
	scene.Emit()
	inter := NewInteraction(scene, intersect, a.Content, a.logger)
	inter.HighlightColor = a.Config.HighlightColor
	inter.SetMetrics(a.Metrics)
	return scene, inter
}
