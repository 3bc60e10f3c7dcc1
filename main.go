// Package main provides the entry point for the Box Net Designer.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"

	boxapp "github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/surface"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/internal/version"
	"github.com/squall321/SmartTwinCluster-sub006/ui/mainwindow"
	"github.com/squall321/SmartTwinCluster-sub006/ui/prefs"
)

const (
	appID         = "io.github.squall321.boxnet"
	watchInterval = 2 * time.Second
)

// options are the command-line settings. Unset flags fall back to the
// saved preferences, then to the built-in defaults.
type options struct {
	sizeX, sizeY, sizeZ float64
	resolution          float64
	margin              int
	template            string
	templateFile        string
	brush               float64
	zoom                string
	mode                string
	logLevel            string
	project             string
	showVersion         bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	d := boxapp.DefaultSettings()
	fs := pflag.NewFlagSet("boxnet", pflag.ContinueOnError)
	fs.Float64Var(&opts.sizeX, "size-x", d.Dims.X, "box size along X in physical units")
	fs.Float64Var(&opts.sizeY, "size-y", d.Dims.Y, "box size along Y in physical units")
	fs.Float64Var(&opts.sizeZ, "size-z", d.Dims.Z, "box size along Z in physical units")
	fs.Float64VarP(&opts.resolution, "resolution", "r", d.Resolution, "atlas pixels per physical unit")
	fs.IntVarP(&opts.margin, "margin", "m", d.Margin, "pixels between and around cells")
	fs.StringVarP(&opts.template, "template", "t", d.Template.Name, "unfolding template name")
	fs.StringVar(&opts.templateFile, "template-file", "", "YAML file of custom templates, reloaded on change")
	fs.Float64VarP(&opts.brush, "brush", "b", d.BrushSize, "brush radius in physical units")
	fs.StringVar(&opts.zoom, "zoom", "fit", `initial zoom: "fit", a percentage or a scale factor`)
	fs.StringVar(&opts.mode, "mode", string(surface.ModePaint), "initial mode: paint, erase or pattern-select")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVarP(&opts.project, "project", "p", "", "project file to open")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")
	return fs
}

// resolveSettings merges flags over preferences over defaults. Flags the
// user did not set keep the saved value.
func resolveSettings(fs *pflag.FlagSet, opts *options, p *prefs.Prefs) (boxapp.Settings, error) {
	pick := func(flag, key string, v float64) float64 {
		if fs.Changed(flag) {
			return v
		}
		return p.FloatWithFallback(key, v)
	}

	s := boxapp.Settings{
		Dims: unfold.Dims{
			X: pick("size-x", prefs.KeySizeX, opts.sizeX),
			Y: pick("size-y", prefs.KeySizeY, opts.sizeY),
			Z: pick("size-z", prefs.KeySizeZ, opts.sizeZ),
		},
		Resolution: pick("resolution", prefs.KeyResolution, opts.resolution),
		Margin:     int(pick("margin", prefs.KeyMargin, float64(opts.margin))),
		BrushSize:  pick("brush", prefs.KeyBrush, opts.brush),
	}

	name := opts.template
	if !fs.Changed("template") {
		name = p.StringWithFallback(prefs.KeyTemplate, name)
	}
	tmpl, ok := unfold.Lookup(name)
	if !ok && !fs.Changed("template") {
		tmpl, ok = unfold.Lookup(opts.template)
	}
	if !ok {
		return boxapp.Settings{}, fmt.Errorf("%w: %q (known: %s)", boxapp.ErrUnknownTemplate, name, strings.Join(unfold.ListTemplates(), ", "))
	}
	s.Template = tmpl
	return s, nil
}

// resolveView returns the initial zoom and mode, flags over preferences.
func resolveView(fs *pflag.FlagSet, opts *options, p *prefs.Prefs) (surface.Zoom, surface.Mode, error) {
	zoomText := opts.zoom
	if !fs.Changed("zoom") {
		zoomText = p.StringWithFallback(prefs.KeyZoom, zoomText)
	}
	zoom, err := surface.ParseZoom(zoomText)
	if err != nil {
		return surface.Zoom{}, "", err
	}
	modeText := opts.mode
	if !fs.Changed("mode") {
		modeText = p.StringWithFallback(prefs.KeyMode, modeText)
	}
	mode, err := surface.ParseMode(modeText)
	if err != nil {
		return surface.Zoom{}, "", err
	}
	return zoom, mode, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "boxnet:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if opts.showVersion {
		fmt.Println(version.String("boxnet"))
		return nil
	}
	if opts.project == "" && fs.NArg() > 0 {
		opts.project = fs.Arg(0)
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	applog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := applog.Logger()
	log.Info("starting", "version", version.Version)

	if opts.templateFile != "" {
		names, err := unfold.LoadTemplates(opts.templateFile)
		if err != nil {
			return fmt.Errorf("template file: %w", err)
		}
		log.Info("templates loaded", "path", opts.templateFile, "names", names)
	}

	p := prefs.Load()
	settings, err := resolveSettings(fs, &opts, p)
	if err != nil {
		return err
	}
	zoom, mode, err := resolveView(fs, &opts, p)
	if err != nil {
		return err
	}

	state, err := boxapp.NewState(settings)
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.Settings().SetTheme(&boxapp.BoxNetTheme{})

	win := mainwindow.New(fyneApp, state, p)
	win.Canvas().SetZoom(zoom)
	win.Controller().SetMode(mode)

	if opts.project != "" {
		if err := state.LoadProject(opts.project); err != nil {
			log.Error("load project", "path", opts.project, "err", err)
		}
	}

	if opts.templateFile != "" {
		if w := state.WatchTemplates(opts.templateFile, watchInterval); w != nil {
			defer w.Stop()
		}
	}

	win.ShowAndRun()
	win.Shutdown()
	return nil
}
