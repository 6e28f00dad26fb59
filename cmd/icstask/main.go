package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"icstask/internal/config"
	"icstask/internal/ics"
	"icstask/internal/importer"
	appLog "icstask/internal/log"
	"icstask/internal/notify"
	"icstask/internal/store/file"
)

type flagConfig struct {
	configPath string
	storePath  string
	once       bool
	watch      bool
	verbose    bool
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	// CLI -store overrides the config file.
	if flags.storePath != "" {
		conf.StorePath = flags.storePath
	}

	st, err := file.Open(conf.StorePath)
	if err != nil {
		appLog.Error("failed to open store", err, "store_path", conf.StorePath)
		os.Exit(1)
	}

	imp := importer.New(st, notify.Logger{}, nil)
	fetcher := ics.NewFetcher(conf.CacheDir)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Positional arguments are .ics files to import right now.
	run := &runner{imp: imp, fetcher: fetcher, sources: conf.Sources}
	failed := false
	for _, path := range flag.Args() {
		if err := run.importPath(ctx, path); err != nil {
			failed = true
		}
	}

	switch {
	case flags.once:
		if run.runSources(ctx) > 0 {
			failed = true
		}
	case flags.watch:
		if err := run.watch(ctx, conf); err != nil {
			appLog.Error("watch mode failed", err)
			failed = true
		}
	case flag.NArg() == 0:
		appLog.Info("nothing to do; pass .ics files, -once or -watch")
	}

	if failed {
		os.Exit(1)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.storePath, "store", "", "Task store path (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Import all configured sources once and exit")
	flag.BoolVar(&cfg.watch, "watch", false, "Keep running: re-import sources on schedule and watch the drop directory")
	flag.BoolVar(&cfg.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/icstask/config.yaml"
	}
	return "./icstask.yaml"
}
