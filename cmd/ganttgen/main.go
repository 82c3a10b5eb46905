package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"ganttgen/internal/capture"
	"ganttgen/internal/config"
	appLog "ganttgen/internal/log"
	"ganttgen/internal/report"
	"ganttgen/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	outDir     string
	serve      bool
	noCapture  bool
	verbose    bool
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("ganttgen starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.outDir != "" {
		conf.OutputDir = flags.outDir
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"reference_date", conf.ReferenceDate,
		"sources", len(conf.Sources),
		"output_dir", conf.OutputDir,
		"serve", flags.serve,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if !flags.serve {
		if err := runOnce(ctx, conf, flags.noCapture); err != nil {
			appLog.Error("generation failed", err)
			os.Exit(1)
		}
		appLog.Info("ganttgen done")
		return
	}

	// Serve mode: render immediately, then on the cron schedule, with
	// the preview server running alongside.
	if err := runOnce(ctx, conf, flags.noCapture); err != nil {
		appLog.Error("initial generation failed", err)
	}

	c := cron.New()
	_, err = c.AddFunc(conf.RefreshCron, func() {
		if err := runOnce(ctx, conf, flags.noCapture); err != nil {
			appLog.Error("scheduled generation failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.Serve(ctx, conf, nil); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}
	appLog.Info("ganttgen exiting")
}

// runOnce executes one parse -> allocate -> render pass and, unless
// disabled, captures the PNG from the rendered HTML file.
func runOnce(ctx context.Context, conf *config.Config, noCapture bool) error {
	rep, err := report.Generate(ctx, conf, time.Now())
	if err != nil {
		return err
	}
	if err := report.WriteArtifacts(conf.OutputDir, rep); err != nil {
		return err
	}
	if noCapture {
		return nil
	}

	htmlPath, err := filepath.Abs(filepath.Join(conf.OutputDir, report.HTMLFile))
	if err != nil {
		return err
	}
	return capture.ChartPNG(ctx, capture.Options{
		URL:        "file://" + htmlPath,
		OutputPath: filepath.Join(conf.OutputDir, report.PNGFile),
		Width:      conf.Width,
		Height:     conf.Height,
	})
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "ganttgen.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the preview server with scheduled refresh instead of a one-shot render")
	flag.BoolVar(&cfg.noCapture, "no-capture", false, "Skip the headless-browser PNG capture")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
