// Command offgrid opens the Digital Brutalism landing page in a window.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/offgrid"
	"github.com/phanxgames/offgrid/internal/config"
	"github.com/phanxgames/offgrid/internal/debugsrv"
	"github.com/phanxgames/offgrid/site"
)

type options struct {
	configPath    string
	width         int
	height        int
	debug         bool
	smokePath     string
	screenshotDir string
	metricsAddr   string
	stats         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:   "offgrid",
		Short: "Digital Brutalism landing page",
		Long: `offgrid renders the Digital Brutalism landing page: a hero with a
distorted grid and parallax layers, a bento grid of cards, diagonal panels
and a footer, animated by scroll triggers and the pointer.

Scroll with the wheel, arrow keys, space or page keys. Effect tuning is read
from --config and reloaded whenever the file changes.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), opts, cfg)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML settings file, watched for changes")
	f.IntVar(&opts.width, "width", 0, "window width in pixels (overrides the config file)")
	f.IntVar(&opts.height, "height", 0, "window height in pixels (overrides the config file)")
	f.BoolVar(&opts.debug, "debug", false, "debug logging and per-second frame stats")
	f.StringVar(&opts.smokePath, "smoke", "", "YAML smoke script to run; exits when it finishes")
	f.StringVar(&opts.screenshotDir, "screenshot-dir", "", "directory for screenshots (overrides the config file)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	root.Flags().BoolVar(&opts.stats, "stats", false, "show the FPS overlay")

	root.AddCommand(newValidateCmd(&opts))
	return root
}

// newValidateCmd checks the config file and smoke script without opening a
// window.
func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and smoke script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, *opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok: %dx%d window\n", cfg.Window.Width, cfg.Window.Height)
			if opts.smokePath != "" {
				runner, err := loadSmoke(opts.smokePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "smoke script ok: %q, %d steps\n", runner.Name(), len(runner.Steps()))
			}
			return nil
		},
	}
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Window.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Window.Height = opts.height
	}
	if flags.Changed("screenshot-dir") {
		cfg.ScreenshotDir = opts.screenshotDir
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.stats {
		cfg.Window.ShowStats = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadSmoke(path string) (*offgrid.SmokeRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read smoke script: %w", err)
	}
	runner, err := offgrid.LoadSmokeScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return runner, nil
}

func run(ctx context.Context, opts options, cfg config.Config) error {
	log, err := config.NewLogger(cfg.Log, opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = log.With(zap.String("run", runID))

	doc := offgrid.NewDocument(float64(cfg.Window.Width), float64(cfg.Window.Height))
	doc.SetLogger(log)
	doc.SetDebugMode(opts.debug)
	doc.ScreenshotDir = filepath.Join(cfg.ScreenshotDir, runID)

	if opts.smokePath != "" {
		runner, err := loadSmoke(opts.smokePath)
		if err != nil {
			return err
		}
		doc.SetSmokeRunner(runner)
		log.Info("smoke run", zap.String("script", runner.Name()), zap.String("screenshots", doc.ScreenshotDir))
	}

	theme, err := site.LoadTheme()
	if err != nil {
		return err
	}
	choreo := offgrid.NewChoreographer(doc, cfg.Effects)
	page := site.NewPage(doc, choreo, theme)
	page.Mount()
	defer page.Unmount()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var metrics *debugsrv.Metrics
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = debugsrv.NewMetrics(reg)
		srv := debugsrv.New(cfg.Metrics.Addr, debugsrv.NewRouter(metrics, reg, log), log)
		g.Go(func() error { return srv.Run(gctx) })
		doc.OnFrame(func(float64) { metrics.Observe(doc.Stats()) })
	}

	if opts.configPath != "" {
		reloads, err := config.Watch(gctx, opts.configPath, log)
		if err != nil {
			log.Warn("config hot reload disabled", zap.Error(err))
		} else {
			doc.OnFrame(func(float64) {
				select {
				case next, ok := <-reloads:
					if !ok {
						return
					}
					page.Apply(next.Effects)
					if metrics != nil {
						metrics.Reloaded()
					}
				default:
				}
			})
		}
	}

	runErr := offgrid.Run(doc, offgrid.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		ShowStats: cfg.Window.ShowStats,
	})
	cancel()
	return errors.Join(runErr, g.Wait())
}
