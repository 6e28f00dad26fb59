package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "icstask/internal/log"
)

// Source is one configured import source: a local path or an HTTP(S)
// URL pointing at an ICS document.
type Source struct {
	// ID identifies the source in logs and cache keys.
	ID string
	// Location is a filesystem path or an http(s) URL.
	Location string
}

// IsRemote reports whether the source needs an HTTP fetch.
func (s Source) IsRemote() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// cacheMeta holds the HTTP validators for one cached URL.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher reads ICS payloads from sources. Remote sources are fetched
// with conditional requests (ETag / Last-Modified) backed by a disk
// cache, so a subscription polled on a schedule costs a 304 most of the
// time and survives its upstream being briefly unreachable.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir. An empty
// cacheDir falls back to a relative directory so development runs work
// without system paths.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: cacheDir,
	}
}

// Fetch returns the raw ICS payload for src. Local paths are read
// directly; remote URLs go through the conditional-request cache.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.Location == "" {
		return nil, errors.New("source location is empty")
	}
	if !src.IsRemote() {
		return os.ReadFile(src.Location)
	}
	return f.fetchRemote(ctx, src)
}

func (f *Fetcher) fetchRemote(ctx context.Context, src Source) ([]byte, error) {
	dir := filepath.Join(f.cacheDir, cacheKey(src.Location))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	meta := loadMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return nil, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Network failure: fall back to the cached body when we have one.
		if len(cached) > 0 {
			appLog.Error("ics fetch failed, using cached body", err, "id", src.ID, "url", RedactURL(src.Location))
			return cached, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		f.saveCache(dir, src, resp, body)
		appLog.Info("ics fetch success", "id", src.ID, "url", RedactURL(src.Location), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, errors.New("304 Not Modified but cache is empty")
		}
		appLog.Debug("ics fetch not modified, using cache", "id", src.ID, "url", RedactURL(src.Location))
		return cached, nil

	default:
		if len(cached) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "id", src.ID, "status", resp.StatusCode)
			return cached, nil
		}
		return nil, errors.New("fetch " + RedactURL(src.Location) + ": " + resp.Status)
	}
}

func (f *Fetcher) saveCache(dir string, src Source, resp *http.Response, body []byte) {
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		appLog.Error("ics cache write failed", err, "id", src.ID)
		return
	}
	meta := cacheMeta{
		URL:          src.Location,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		UpdatedAt:    time.Now().UTC(),
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600); err != nil {
		appLog.Error("ics cache meta write failed", err, "id", src.ID)
	}
}

func loadMeta(dir string) cacheMeta {
	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return cacheMeta{}
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}
	}
	return meta
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// RedactURL hides the path and query of an ICS URL for logging:
// private subscription URLs routinely embed tokens.
func RedactURL(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
