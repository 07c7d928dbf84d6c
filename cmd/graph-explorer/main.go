package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/graph-explorer/pkg/config"
	"github.com/ritzau/graph-explorer/pkg/export"
	"github.com/ritzau/graph-explorer/pkg/fetch"
	"github.com/ritzau/graph-explorer/pkg/logging"
	"github.com/ritzau/graph-explorer/pkg/output"
	"github.com/ritzau/graph-explorer/pkg/pipeline"
	"github.com/ritzau/graph-explorer/pkg/pubsub"
	"github.com/ritzau/graph-explorer/pkg/watcher"
	"github.com/ritzau/graph-explorer/pkg/web"
)

func main() {
	// Flag names match the koanf keys so posflag can overlay them
	f := pflag.NewFlagSet("graph-explorer", pflag.ExitOnError)
	f.String("source", "", "CSV dataset to load (local path or http(s) URL)")
	f.String("delimiter", ";", "CSV field delimiter")
	f.Bool("web", false, "Start web server instead of printing to console")
	f.Int("port", 8080, "Port for web server (only used with --web)")
	f.Bool("watch", false, "Reload when a local source file changes (only used with --web)")
	f.Bool("open", true, "Open browser after starting the web server")
	f.String("export", "", "Write the visible graph as an HTML file and exit")
	f.String("verbosity", "", "Log level: debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (repeatable)")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(logLevel(cfg))

	if cfg.Source == "" {
		fmt.Fprintln(os.Stderr, "Error: --source is required")
		os.Exit(1)
	}
	if err := fetch.Validate(cfg.Source); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.WebMode {
		runWeb(cfg, delimiter)
	} else {
		runCLI(cfg, delimiter)
	}
}

func runCLI(cfg *config.Config, delimiter rune) {
	p := pipeline.New(cfg.Headers, pipeline.WithDelimiter(delimiter))
	if err := p.Load(context.Background(), cfg.Source); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output.PrintGraphReport(cfg.Source, p.Graph(), p.Selection())

	if cfg.Export != "" {
		if err := export.RenderToFile(cfg.Export, p.View(), cfg.Source); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logging.Info("exported visible graph", "path", cfg.Export)
	}
}

func runWeb(cfg *config.Config, delimiter rune) {
	publisher := pubsub.NewSSEPublisher()
	defer publisher.Close()

	p := pipeline.New(cfg.Headers,
		pipeline.WithDelimiter(delimiter),
		pipeline.WithPublisher(publisher),
	)

	server := web.NewServer(p, publisher, cfg.Source)
	go func() {
		if err := server.Start(cfg.Port); err != nil {
			logging.Fatal("web server failed", "error", err)
		}
	}()

	// Load in the background so the UI can show progress over SSE
	go func() {
		if err := p.Load(context.Background(), cfg.Source); err != nil {
			logging.Error("initial load failed", "source", cfg.Source, "error", err)
		}
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	if cfg.OpenBrowser {
		time.Sleep(500 * time.Millisecond)
		openBrowser(url)
	}

	if cfg.Watch && fetch.IsLocal(cfg.Source) {
		watchAndReload(p, cfg.Source)
	}

	// Block forever (server runs in goroutine)
	select {}
}

func watchAndReload(p *pipeline.Pipeline, source string) {
	fw, err := watcher.NewFileWatcher(source, 200*time.Millisecond, 2*time.Second)
	if err != nil {
		logging.Error("cannot watch source", "source", source, "error", err)
		return
	}
	if err := fw.Start(context.Background()); err != nil {
		logging.Error("cannot watch source", "source", source, "error", err)
		return
	}

	go func() {
		for change := range fw.Events() {
			logging.Info("source changed, reloading", "path", change.Path)
			if err := p.Load(context.Background(), source); err != nil {
				logging.Error("reload failed", "source", source, "error", err)
			}
		}
	}()
}

func logLevel(cfg *config.Config) slog.Level {
	switch cfg.Verbosity {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if cfg.VerboseCnt > 0 {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on platform", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
