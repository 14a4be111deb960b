package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"careerline/internal/capture"
	"careerline/internal/config"
	appLog "careerline/internal/log"
	"careerline/internal/render"
	"careerline/internal/source"
	"careerline/internal/web"
)

// flagConfig holds CLI flag values before the config file is merged in.
type flagConfig struct {
	configPath string
	listen     string
	source     string
	once       bool
	out        string
	dump       bool
	capture    string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applyOverrides(conf, flags)
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	loc, _ := conf.Location()

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"source_url", conf.Source.URL != "",
		"source_path", conf.Source.Path,
		"window", fmt.Sprintf("%d..%d", conf.Window.StartYear, conf.Window.EndYear),
		"overlay", conf.Layout.OverlaySection,
		"merge", conf.Layout.MergeSections,
		"once", flags.once,
		"dump", flags.dump,
		"capture", flags.capture,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := source.NewFetcher(conf.Source.CacheDir, time.Duration(conf.Source.TimeoutSeconds)*time.Second)
	srv := web.NewServer(conf, loc, fetcher)
	srv.Refresh(ctx)

	switch {
	case flags.dump:
		err = runDump(srv, os.Stdout)
	case flags.once:
		err = runOnce(srv, flags.out)
	case flags.capture != "":
		err = runCapture(ctx, srv, conf, flags.capture)
	default:
		err = runServe(ctx, srv)
	}
	if err != nil {
		appLog.Error("careerline failed", err)
		os.Exit(1)
	}
	appLog.Info("careerline exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./careerline.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.source, "source", "", "Timeline source: http(s) URL or file path (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render a standalone HTML page and exit")
	flag.StringVar(&cfg.out, "out", "", "Output path for --once (default stdout)")
	flag.BoolVar(&cfg.dump, "dump", false, "Print the computed layout as JSON and exit")
	flag.StringVar(&cfg.capture, "capture", "", "Write a PNG screenshot of the page to this path and exit")

	flag.Parse()

	return cfg
}

func applyOverrides(conf *config.Config, flags flagConfig) {
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.source != "" {
		if isURL(flags.source) {
			conf.Source.URL, conf.Source.Path = flags.source, ""
		} else {
			conf.Source.URL, conf.Source.Path = "", flags.source
		}
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func runServe(ctx context.Context, srv *web.Server) error {
	stop, err := srv.StartRefresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh schedule: %w", err)
	}
	defer stop()
	return srv.ListenAndServe(ctx)
}

func runOnce(srv *web.Server, out string) error {
	layout, _, src, err := srv.Snapshot()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	err = render.Write(w, render.Page{
		Layout:     layout,
		BodyClass:  srv.View().BodyClass(),
		Origin:     string(src.Origin),
		Generated:  src.LoadedAt,
		Standalone: true,
	})
	if err == nil && out != "" {
		appLog.Info("page written", "path", out, "tracks", len(layout.Tracks))
	}
	return err
}

func runDump(srv *web.Server, w io.Writer) error {
	layout, _, _, err := srv.Snapshot()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(layout)
}

// runCapture serves the page on an ephemeral loopback port just long enough
// to screenshot it. Basic auth is skipped there; the browser has no credentials.
func runCapture(ctx context.Context, srv *web.Server, conf *config.Config, path string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	serveCtx, stopServe := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(serveCtx, ln, srv.LoopbackHandler()) }()

	_, capErr := capture.PNG(ctx, capture.Options{
		URL:        "http://" + ln.Addr().String() + "/",
		OutputPath: path,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
		Timeout:    time.Duration(conf.Capture.TimeoutSeconds) * time.Second,
	})

	stopServe()
	if err := <-done; err != nil {
		appLog.Error("capture server shutdown", err)
	}
	return capErr
}
