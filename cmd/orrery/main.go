package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ChristopherRabotin/orrery"
	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

const dateFormat = "2006-01-02 15:04:05"

// cli holds the flags of one invocation.
type cli struct {
	v       *viper.Viper
	confDir string
	atDate  string
	atJDE   float64
	bodies  []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "orrery: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "orrery",
		Short:         "Interactive model of the solar system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.confDir, "config", "", "directory of conf.toml (default $"+orrery.ConfigEnv+")")
	root.PersistentFlags().String("log-file", "", "rotate the logs in this file instead of stderr")
	root.PersistentFlags().StringVar(&c.atDate, "at", "", "instant of the model as \""+dateFormat+"\" UTC (default now)")
	root.PersistentFlags().Float64Var(&c.atJDE, "jde", 0, "instant of the model as a Julian date, overrides --at")
	c.v.BindPFlag("log.file", root.PersistentFlags().Lookup("log-file"))

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scene to a browser renderer over websocket",
		RunE:  c.runServe,
	}
	serve.Flags().String("addr", "", "bridge listen address")
	serve.Flags().String("metrics-addr", "", "metrics listen address")
	c.v.BindPFlag("server.addr", serve.Flags().Lookup("addr"))
	c.v.BindPFlag("server.metrics_addr", serve.Flags().Lookup("metrics-addr"))

	positions := &cobra.Command{
		Use:   "positions",
		Short: "Print the position of every body",
		RunE:  c.runPositions,
	}
	positions.Flags().StringSliceVar(&c.bodies, "body", nil, "only print these bodies (repeatable)")

	export := &cobra.Command{
		Use:   "export [name]",
		Short: "Export the orbit traces as a Cosmographia catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runExport,
	}
	export.Flags().String("dir", "", "output directory")
	c.v.BindPFlag("general.output_path", export.Flags().Lookup("dir"))

	root.AddCommand(serve, positions, export)
	return root
}

// setup reads the configuration and returns the logger and the instant of the model.
func (c *cli) setup() (orrery.Config, kitlog.Logger, time.Time, error) {
	conf, err := orrery.LoadConfig(c.v, c.confDir)
	if err != nil {
		return conf, nil, time.Time{}, err
	}
	var w io.Writer = os.Stderr
	if conf.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		}
	}
	logger := orrery.NewLogger(w)
	dt, err := c.instant()
	return conf, logger, dt, err
}

func (c *cli) instant() (time.Time, error) {
	if c.atJDE != 0 {
		return julian.JDToTime(c.atJDE), nil
	}
	if c.atDate != "" {
		return time.ParseInLocation(dateFormat, c.atDate, time.UTC)
	}
	return time.Now().UTC(), nil
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	conf, logger, dt, err := c.setup()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	app, err := orrery.NewApp(conf, dt, orrery.NewMetrics(reg), logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", orrery.NewBridge(app, logger))
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	servers := []*http.Server{
		{Addr: conf.Addr, Handler: mux},
		{Addr: conf.MetricsAddr, Handler: metricsMux},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Log("level", "notice", "subsys", "main", "listen", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			srv.Shutdown(shutdown)
		}
		return nil
	})
	return g.Wait()
}

func (c *cli) runPositions(cmd *cobra.Command, args []string) error {
	var only map[orrery.BodyKey]bool
	for _, name := range c.bodies {
		b, err := orrery.BodyFromString(name)
		if err != nil {
			return err
		}
		if only == nil {
			only = map[orrery.BodyKey]bool{}
		}
		only[b.Key()] = true
	}
	conf, logger, dt, err := c.setup()
	if err != nil {
		return err
	}
	app, err := orrery.NewApp(conf, dt, nil, logger)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# %s (JD %f)\n", app.DT.Format(dateFormat), julian.TimeToJD(app.DT))
	fmt.Fprintln(tw, "body\tx\ty\tz\tr (AU)\tsource")
	for _, node := range app.Scene.Nodes() {
		if only != nil && !only[node.Key] {
			continue
		}
		source := "elements"
		if _, ok := app.Catalog.Lookup(node.Key); !ok {
			source = "circular"
		}
		rAU := node.Position.Norm() / app.Propagator.Scale / orrery.AU
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.4f\t%s\n", node.Body.Name, node.Position.X, node.Position.Y, node.Position.Z, rAU, source)
	}
	return tw.Flush()
}

func (c *cli) runExport(cmd *cobra.Command, args []string) error {
	conf, logger, dt, err := c.setup()
	if err != nil {
		return err
	}
	name := "orrery"
	if len(args) == 1 {
		name = args[0]
	}
	var cat orrery.Catalog
	if conf.CatalogPath == "" {
		cat = orrery.DefaultCatalog(logger)
	} else {
		cat = orrery.LoadCatalogFile(conf.CatalogPath, logger)
	}
	prop := orrery.NewPropagator(cat, orrery.KeplerianEphemeris, conf.Scale, logger)
	path, err := orrery.ExportTraces(conf.OutputDir, name, orrery.Bodies(), prop, dt, conf.TraceSamples, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saving file to %s.\n", path)
	return nil
}
