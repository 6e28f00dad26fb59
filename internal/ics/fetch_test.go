package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), 0o600))

	f := NewFetcher(t.TempDir())
	body, err := f.Fetch(context.Background(), Source{ID: "local", Location: path})
	require.NoError(t, err)
	assert.Contains(t, string(body), "VCALENDAR")
}

func TestFetchRemoteUsesConditionalRequests(t *testing.T) {
	const payload = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	hits := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", Location: srv.URL + "/cal.ics"}

	first, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, payload, string(first))

	// Second fetch sends the validator, gets a 304 and serves the cache.
	second, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, payload, string(second))
	assert.Equal(t, 2, hits)
}

func TestFetchRemoteFallsBackToCacheOnServerError(t *testing.T) {
	const payload = "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	healthy := true

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", Location: srv.URL + "/cal.ics"}

	_, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)

	healthy = false
	body, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, payload, string(body))
}

func TestFetchEmptyLocation(t *testing.T) {
	f := NewFetcher(t.TempDir())
	_, err := f.Fetch(context.Background(), Source{ID: "x"})
	assert.Error(t, err)
}

func TestSourceIsRemote(t *testing.T) {
	assert.True(t, Source{Location: "https://example.com/a.ics"}.IsRemote())
	assert.True(t, Source{Location: "http://example.com/a.ics"}.IsRemote())
	assert.False(t, Source{Location: "/tmp/a.ics"}.IsRemote())
	assert.False(t, Source{Location: "a.ics"}.IsRemote())
}
