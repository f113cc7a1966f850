// Package pictogram resolves ARASAAC search terms to locally cached
// pictogram images.
package pictogram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Provider resolves a search term to a local image path. ok is false when
// the service has no pictogram for the term.
type Provider interface {
	Resolve(ctx context.Context, term, lang string, resolution int) (path string, ok bool, err error)
}

type Options struct {
	APIURL    string
	StaticURL string
	CacheDir  string
	Timeout   time.Duration
	Logger    *zap.Logger
}

type ARASAAC struct {
	client    *fasthttp.Client
	cache     *Cache
	apiURL    string
	staticURL string
	cacheDir  string
	timeout   time.Duration
	logger    *zap.Logger
}

type searchHit struct {
	ID int64 `json:"_id"`
}

// NewARASAAC opens (or creates) the cache under opts.CacheDir.
func NewARASAAC(opts Options) (*ARASAAC, error) {
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("pictogram cache dir is required")
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pictogram cache dir: %w", err)
	}
	cache, err := OpenCache(filepath.Join(opts.CacheDir, "index.db"))
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &ARASAAC{
		client: &fasthttp.Client{
			Name:                "bildschema",
			MaxResponseBodySize: 8 << 20,
		},
		cache:     cache,
		apiURL:    strings.TrimRight(opts.APIURL, "/"),
		staticURL: strings.TrimRight(opts.StaticURL, "/"),
		cacheDir:  opts.CacheDir,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}, nil
}

func (a *ARASAAC) Close() error {
	return a.cache.Close()
}

func (a *ARASAAC) Resolve(ctx context.Context, term, lang string, resolution int) (string, bool, error) {
	term = normalizeTerm(term)
	if term == "" {
		return "", false, nil
	}

	entry, found, err := a.cache.Get(ctx, term, lang, resolution)
	if err != nil {
		return "", false, err
	}
	if found {
		if fileExists(entry.Path) {
			return entry.Path, true, nil
		}
		a.logger.Info("cached pictogram missing on disk, refetching",
			zap.String("term", term), zap.String("path", entry.Path))
		if err := a.cache.Delete(ctx, term, lang, resolution); err != nil {
			return "", false, err
		}
	}

	id, found, err := a.search(ctx, term, lang)
	if err != nil {
		return "", false, err
	}
	if !found {
		a.logger.Debug("no pictogram for term", zap.String("term", term), zap.String("lang", lang))
		return "", false, nil
	}

	path, err := a.download(ctx, id, resolution)
	if err != nil {
		return "", false, err
	}

	if err := a.cache.Put(ctx, Entry{Term: term, Lang: lang, Resolution: resolution, PictogramID: id, Path: path}); err != nil {
		return "", false, err
	}
	a.logger.Debug("pictogram cached", zap.String("term", term), zap.Int64("id", id), zap.String("path", path))
	return path, true, nil
}

func (a *ARASAAC) search(ctx context.Context, term, lang string) (int64, bool, error) {
	endpoint := fmt.Sprintf("%s/v1/pictograms/%s/search/%s", a.apiURL, url.PathEscape(lang), url.PathEscape(term))
	status, body, err := a.get(ctx, endpoint)
	if err != nil {
		return 0, false, fmt.Errorf("search pictogram %q: %w", term, err)
	}
	if status == fasthttp.StatusNotFound {
		return 0, false, nil
	}
	if status != fasthttp.StatusOK {
		return 0, false, fmt.Errorf("search pictogram %q: status %d", term, status)
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return 0, false, fmt.Errorf("parse search response for %q: %w", term, err)
	}
	if len(hits) == 0 {
		return 0, false, nil
	}
	return hits[0].ID, true, nil
}

func (a *ARASAAC) download(ctx context.Context, id int64, resolution int) (string, error) {
	endpoint := fmt.Sprintf("%s/pictograms/%d/%d_%d.png", a.staticURL, id, id, resolution)
	status, body, err := a.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("download pictogram %d: %w", id, err)
	}
	if status != fasthttp.StatusOK {
		return "", fmt.Errorf("download pictogram %d: status %d", id, status)
	}

	path := filepath.Join(a.cacheDir, fmt.Sprintf("%d_%d.png", id, resolution))
	tmp := path + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", fmt.Errorf("write pictogram %d: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write pictogram %d: %w", id, err)
	}
	return path, nil
}

// get performs a GET bounded by the context deadline or the provider timeout.
// The body is copied out of the pooled response.
func (a *ARASAAC) get(ctx context.Context, endpoint string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	deadline := time.Now().Add(a.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := a.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
