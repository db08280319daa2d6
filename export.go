package orrery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

func (t *CgTrajectory) String() string {
	return t.Source + " as " + t.Type
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of an xyzv file.
type CgInterpolatedState struct {
	JD       float64
	Position Vector3
	Velocity Vector3
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position.X, i.Position.Y, i.Position.Z, i.Velocity.X, i.Velocity.Y, i.Velocity.Z)
}

// colorComponents returns the RGB components of a hex color in [0, 1].
func colorComponents(hex uint32) []float64 {
	return []float64{float64(hex>>16&0xff) / 255, float64(hex>>8&0xff) / 255, float64(hex&0xff) / 255}
}

// ExportTraces writes one xyzv file per body with the states of its orbit trace starting at dt,
// and a Cosmographia catalog referencing them. It returns the path of the catalog.
// A body whose trace fails is logged and left out of the catalog.
func ExportTraces(dir, name string, bodies []BodyDefinition, prop *Propagator, dt time.Time, samples int, logger kitlog.Logger) (string, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "export")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	catalog := CgCatalog{Version: "1.0", Name: name}
	for _, b := range bodies {
		states, err := prop.SampleStates(b, dt, samples)
		if err != nil {
			logger.Log("level", "error", "body", b.Key(), "err", err)
			continue
		}
		source := fmt.Sprintf("trace-%s-%s.xyzv", name, b.Key())
		if err := writeInterpolatedFile(filepath.Join(dir, source), states); err != nil {
			return "", err
		}
		first, last := states[0].DT, states[len(states)-1].DT
		color := colorComponents(b.ColorHex)
		catalog.Items = append(catalog.Items, &CgItems{
			Class:           "planet",
			Name:            b.Name,
			StartTime:       first.Format(time.RFC3339),
			EndTime:         last.Format(time.RFC3339),
			Center:          "Sun",
			TrajectoryFrame: "EclipticJ2000",
			Trajectory:      &CgTrajectory{Type: "InterpolatedStates", Source: source},
			Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
			TrajectoryPlot:  &CgTrajectoryPlot{Color: color, LineWidth: 1, Duration: fmt.Sprintf("%d d", int(last.Sub(first).Hours()/24+1)), Lead: "0 d", SampleCount: samples},
		})
	}
	catalogPath := filepath.Join(dir, fmt.Sprintf("catalog-%s.json", name))
	marsh, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(catalogPath, marsh, 0o644); err != nil {
		return "", err
	}
	logger.Log("level", "info", "catalog", catalogPath, "items", len(catalog.Items))
	return catalogPath, nil
}

func writeInterpolatedFile(path string, states []SampledState) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	// Header
	fmt.Fprintf(f, `# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in km
#   Velocity in km/sec`, time.Now().UTC())
	for _, st := range states {
		rec := CgInterpolatedState{JD: julian.TimeToJD(st.DT), Position: st.State.R, Velocity: st.State.V}
		if _, err := f.WriteString("\n" + rec.ToText()); err != nil {
			return err
		}
	}
	_, err = f.WriteString("\n")
	return err
}
