package pictogram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

type fakeARASAAC struct {
	server    *httptest.Server
	searches  atomic.Int32
	downloads atomic.Int32
}

func newFakeARASAAC(t *testing.T) *fakeARASAAC {
	t.Helper()
	fake := &fakeARASAAC{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/pictograms/", func(w http.ResponseWriter, r *http.Request) {
		fake.searches.Add(1)
		switch {
		case strings.HasSuffix(r.URL.Path, "/en/search/breakfast"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"_id":2439,"keywords":[{"keyword":"breakfast"}]},{"_id":9999}]`))
		case strings.HasSuffix(r.URL.Path, "/en/search/empty"):
			_, _ = w.Write([]byte(`[]`))
		case strings.HasSuffix(r.URL.Path, "/en/search/broken"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("/pictograms/2439/2439_300.png", func(w http.ResponseWriter, r *http.Request) {
		fake.downloads.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})
	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

func newTestProvider(t *testing.T, fake *fakeARASAAC) *ARASAAC {
	t.Helper()
	provider, err := NewARASAAC(Options{
		APIURL:    fake.server.URL,
		StaticURL: fake.server.URL + "/",
		CacheDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

func TestResolveDownloadsAndCaches(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)
	ctx := context.Background()

	path, ok, err := provider.Resolve(ctx, "Breakfast", "en", 300)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok {
		t.Fatalf("expected a pictogram")
	}
	if filepath.Base(path) != "2439_300.png" {
		t.Fatalf("unexpected cache path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pictogram: %v", err)
	}
	if string(data) != string(pngBytes) {
		t.Fatalf("unexpected pictogram bytes")
	}

	again, ok, err := provider.Resolve(ctx, " breakfast ", "en", 300)
	if err != nil || !ok || again != path {
		t.Fatalf("expected cached path, got %q ok=%v err=%v", again, ok, err)
	}
	if fake.searches.Load() != 1 || fake.downloads.Load() != 1 {
		t.Fatalf("expected one search and one download, got %d/%d", fake.searches.Load(), fake.downloads.Load())
	}
}

func TestResolveRefetchesMissingFile(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)
	ctx := context.Background()

	path, _, err := provider.Resolve(ctx, "breakfast", "en", 300)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	again, ok, err := provider.Resolve(ctx, "breakfast", "en", 300)
	if err != nil || !ok {
		t.Fatalf("expected refetch, got ok=%v err=%v", ok, err)
	}
	if !fileExists(again) {
		t.Fatalf("expected pictogram to be written again")
	}
	if fake.downloads.Load() != 2 {
		t.Fatalf("expected second download, got %d", fake.downloads.Load())
	}
}

func TestResolveWithoutHit(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)

	for _, term := range []string{"empty", "unknown", "   "} {
		path, ok, err := provider.Resolve(context.Background(), term, "en", 300)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", term, err)
		}
		if ok || path != "" {
			t.Fatalf("%q: expected no pictogram, got %q", term, path)
		}
	}
}

func TestResolveServerError(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)

	if _, _, err := provider.Resolve(context.Background(), "broken", "en", 300); err == nil {
		t.Fatalf("expected error for failing search")
	}
}

func TestResolveCancelledContext(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := provider.Resolve(ctx, "breakfast", "en", 300); err == nil {
		t.Fatalf("expected cancellation error")
	}
	if fake.searches.Load() != 0 {
		t.Fatalf("expected no request after cancellation")
	}
}

func TestResolveDropsStaleEntryWithoutHit(t *testing.T) {
	fake := newFakeARASAAC(t)
	provider := newTestProvider(t, fake)
	ctx := context.Background()

	stale := Entry{Term: "empty", Lang: "en", Resolution: 300, PictogramID: 1, Path: filepath.Join(t.TempDir(), "gone.png")}
	if err := provider.cache.Put(ctx, stale); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok, err := provider.Resolve(ctx, "empty", "en", 300); err != nil || ok {
		t.Fatalf("expected no pictogram, got ok=%v err=%v", ok, err)
	}
	if _, found, err := provider.cache.Get(ctx, "empty", "en", 300); err != nil || found {
		t.Fatalf("expected stale entry removed, found=%v err=%v", found, err)
	}
}
