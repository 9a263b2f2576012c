package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-spatial/geom"
	"github.com/iancoleman/strcase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pdok/spatialid/camerasync"
	"github.com/pdok/spatialid/config"
	"github.com/pdok/spatialid/geomhelp"
	"github.com/pdok/spatialid/logger"
	"github.com/pdok/spatialid/replay"
	"github.com/pdok/spatialid/spatialid"
)

const CONFIG string = `config`
const LOGLEVEL string = `logLevel`
const LOGFILE string = `logFile`
const LNG string = `lng`
const LAT string = `lat`
const ALT string = `alt`
const ZOOM string = `zoom`
const MAXWIDTH string = `maxWidth`
const TRACK string = `track`

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

//nolint:funlen
func newApp(stdout io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "spatialid"
	app.Usage = "Spatial IDs (z/f/x/y voxels) for positions and camera tracks"
	app.Version = versioninfo.Short()
	app.Writer = stdout

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "YAML config file, defaults apply to everything it leaves out",
			EnvVars: []string{strcase.ToScreamingSnake(CONFIG)},
		},
		&cli.StringFlag{
			Name:    LOGLEVEL,
			Usage:   "Overrides the config log level. One of debug, info, warn, error",
			EnvVars: []string{strcase.ToScreamingSnake(LOGLEVEL)},
		},
		&cli.StringFlag{
			Name:    LOGFILE,
			Usage:   "Overrides the config log file, rotated by size",
			EnvVars: []string{strcase.ToScreamingSnake(LOGFILE)},
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "compute",
			Usage: "Prints the spatial ID of a position",
			Flags: []cli.Flag{
				&cli.Float64Flag{Name: LNG, Usage: "Longitude in degrees", Required: true},
				&cli.Float64Flag{Name: LAT, Usage: "Latitude in degrees, strictly between -90 and 90", Required: true},
				&cli.Float64Flag{Name: ALT, Usage: "Altitude in meters", Value: 0},
				&cli.UintFlag{Name: ZOOM, Aliases: []string{"z"}, Usage: "Zoom level", Required: true},
			},
			Action: func(c *cli.Context) error {
				id, err := spatialid.Locate(c.Float64(LNG), c.Float64(LAT), c.Float64(ALT), c.Uint(ZOOM))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, id)
				return err
			},
		},
		{
			Name:      "bounds",
			Usage:     "Prints the map tile, footprint (WKT) and altitude range of spatial IDs",
			ArgsUsage: "LABEL [LABEL...]",
			Flags: []cli.Flag{
				&cli.UintFlag{Name: MAXWIDTH, Aliases: []string{"w"}, Usage: "Truncate the WKT to this many characters, 0 is unlimited"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return cli.Exit("at least one spatial ID is needed, e.g. 18/1/232372/102864", 1)
				}
				for _, label := range c.Args().Slice() {
					id, err := spatialid.Parse(label)
					if err != nil {
						return err
					}
					b := id.Bounds()
					wkt := geomhelp.WktMustEncode(geomhelp.ExtentPolygon(b.Extent), c.Uint(MAXWIDTH))
					if _, err = fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t[%g, %g)\n", id, tileLabel(id), wkt, b.MinAlt, b.MaxAlt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:  "replay",
			Usage: "Follows a recorded camera track (JSON lines) and prints every label placed",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     TRACK,
					Aliases:  []string{"t"},
					Usage:    `JSON lines file, one {"lng","lat","elevation","zoom"} per line. - reads stdin`,
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(TRACK)},
				},
			},
			Action: replayAction,
		},
	}
	return app
}

// tileLabel is the z/x/y of the slippy map tile under a voxel, or - outside the grid.
func tileLabel(id spatialid.ID) string {
	tile, ok := id.Tile()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)
}

func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.String(CONFIG))
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet(LOGLEVEL) {
		cfg.Logging.Level = c.String(LOGLEVEL)
	}
	if c.IsSet(LOGFILE) {
		cfg.Logging.File.Path = c.String(LOGFILE)
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.File), nil
}

func replayAction(c *cli.Context) error {
	cfg, zlog, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	var track io.Reader = os.Stdin
	if path := c.String(TRACK); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("error opening camera track: %w", err)
		}
		defer f.Close()
		track = f
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	trail := camerasync.NewTrail()
	overlay := replay.NewWriterOverlay(c.App.Writer)
	headless := replay.NewHeadlessMap(cfg.Map)
	state := camerasync.NewViewState(cfg.Overlay, cfg.Sync)
	s := camerasync.New(cfg.Sync, headless, overlay, state,
		zlog, camerasync.NewMetrics(registry), trail)

	zlog.Info("=== start replay ===", zap.String("track", c.String(TRACK)))
	if err = replay.Replay(ctx, replay.NewJSONLinesSource(track, zlog), headless, s); err != nil {
		return err
	}
	if err = overlay.Err(); err != nil {
		return fmt.Errorf("error writing labels: %w", err)
	}
	zlog.Info("=== done replay ===")

	logViewState(zlog, state)
	logTrail(zlog, trail)
	logMetrics(zlog, registry)
	return nil
}

func logViewState(zlog *zap.Logger, state *camerasync.ViewState) {
	snap := state.Snapshot()
	if !snap.Evaluated {
		zlog.Warn("no spatial id was ever shown")
		return
	}
	tilesets := make([]string, 0, len(snap.Tilesets))
	for _, ts := range snap.Tilesets {
		tilesets = append(tilesets, ts.ID)
	}
	zlog.Info("final view",
		zap.String("caption", snap.Caption),
		zap.String("model", snap.ModelURL),
		zap.Float64("modelAlt", snap.Model.Alt),
		zap.Strings("tilesets", tilesets))
}

func logTrail(zlog *zap.Logger, trail *camerasync.Trail) {
	fields := []zap.Field{zap.Int("voxels", trail.Len()), zap.Int("visits", trail.Visits())}
	if id, count, ok := trail.MostVisited(); ok {
		fields = append(fields, zap.Stringer("mostVisited", id), zap.Int("mostVisitedCount", count))
	}
	zlog.Info("trail", fields...)
	for _, id := range trail.Sorted() {
		b := id.Bounds()
		lng, lat, alt := b.Centroid()
		zlog.Debug("visited",
			zap.Stringer("spatialID", id),
			zap.Int("count", trail.Count(id)),
			zap.String("centroid", geomhelp.WktMustEncode(geom.Point{lng, lat}, 0)),
			zap.Float64("alt", alt))
	}
}

func logMetrics(zlog *zap.Logger, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		zlog.Warn("could not gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			zlog.Info("metric", zap.String("name", mf.GetName()), zap.Float64("value", value))
		}
	}
}
