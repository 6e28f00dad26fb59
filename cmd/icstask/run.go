package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/robfig/cron/v3"

	"icstask/internal/config"
	"icstask/internal/ics"
	"icstask/internal/importer"
	appLog "icstask/internal/log"
	"icstask/internal/watcher"
)

// runner serializes all import work against one store. The cron
// schedule and the drop-directory watcher both fire on their own
// goroutines; the mutex keeps one import's snapshot stable.
type runner struct {
	imp     *importer.Importer
	fetcher *ics.Fetcher
	sources []config.SourceConfig

	mu sync.Mutex
}

// importPath imports a local .ics file.
func (r *runner) importPath(ctx context.Context, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		appLog.Error("failed to read file", err, "path", path)
		return err
	}
	return r.importBody(ctx, body, filepath.Base(path))
}

// importSource fetches and imports one configured source.
func (r *runner) importSource(ctx context.Context, src config.SourceConfig) error {
	body, err := r.fetcher.Fetch(ctx, ics.Source{ID: src.ID, Location: src.Location})
	if err != nil {
		appLog.Error("failed to fetch source", err, "id", src.ID)
		return err
	}
	display := src.Name
	if display == "" {
		display = filepath.Base(src.Location)
	}
	return r.importBody(ctx, body, display)
}

func (r *runner) importBody(ctx context.Context, body []byte, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.imp.ImportCalendar(ctx, body, displayName)
	return err
}

// runSources imports every configured source, returning the number of
// failures. One bad source does not stop the rest.
func (r *runner) runSources(ctx context.Context) int {
	failures := 0
	for _, src := range r.sources {
		if ctx.Err() != nil {
			return failures
		}
		if err := r.importSource(ctx, src); err != nil {
			failures++
		}
	}
	return failures
}

// watch runs until ctx is canceled: an initial pass over the sources,
// then cron-scheduled re-imports, plus a drop-directory watcher when
// configured.
func (r *runner) watch(ctx context.Context, conf *config.Config) error {
	r.runSources(ctx)

	c := cron.New()
	if len(r.sources) > 0 {
		if _, err := c.AddFunc(conf.RefreshCron, func() { r.runSources(ctx) }); err != nil {
			return err
		}
		appLog.Info("source refresh scheduled", "cron", conf.RefreshCron, "source_count", len(r.sources))
	}
	c.Start()
	defer c.Stop()

	if conf.WatchDir != "" {
		w := watcher.New(conf.WatchDir, func(ctx context.Context, path string) {
			_ = r.importPath(ctx, path)
		})
		return w.Run(ctx)
	}

	<-ctx.Done()
	return nil
}
