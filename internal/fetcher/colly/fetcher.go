// Package collyfetcher implements fetcher.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
)

const (
	defaultTimeout     = 20 * time.Second
	defaultMaxBodySize = 10 << 20

	// DefaultBrowserUserAgent is sent on lax requests; several recruitment
	// portals refuse non-browser agents outright.
	DefaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	laxAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	laxAcceptLanguage = "en-IN,en;q=0.9"
)

// Config controls collector behavior.
type Config struct {
	UserAgent        string
	BrowserUserAgent string
	RespectRobots    bool
	Timeout          time.Duration
	MaxBodySize      int
}

// Fetcher implements fetcher.Fetcher using a fresh Colly collector per call.
// Collectors share an immutable transport per TLS policy, so a request that
// skips certificate checks never changes how any other request negotiates.
type Fetcher struct {
	cfg       Config
	strict    http.RoundTripper
	insecure  http.RoundTripper
	logger    *zap.Logger
	observeFn func(url string, status, bytes int)
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.BrowserUserAgent == "" {
		cfg.BrowserUserAgent = DefaultBrowserUserAgent
	}
	logger = logger.Named("fetcher")

	var strict, insecure http.RoundTripper = newHTTPTransport(false), newHTTPTransport(true)
	if cfg.RespectRobots {
		strict = newRobotsTransport(strict, logger)
		insecure = newRobotsTransport(insecure, logger)
	}
	return &Fetcher{
		cfg:       cfg,
		strict:    strict,
		insecure:  insecure,
		logger:    logger,
		observeFn: metrics.ObserveFetch,
	}
}

// Fetch executes a single HTTP GET using Colly and parses the body.
func (f *Fetcher) Fetch(ctx context.Context, request fetcher.Request) (fetcher.Page, error) {
	var (
		result   fetcher.Page
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(ctx, request)
	f.configureCollectorHooks(collector, request, start, &result, &fetchErr)

	err := f.runCollector(ctx, collector, request.URL, &fetchErr)
	f.observeFn(request.URL, result.StatusCode, len(result.Body))
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", request.URL), zap.Error(err))
		return fetcher.Page{}, err
	}

	doc, err := fetcher.ParseDocument(result.Body)
	if err != nil {
		return fetcher.Page{}, err
	}
	result.Doc = doc
	f.logger.Debug("fetched page",
		zap.String("url", result.URL),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (f *Fetcher) buildCollector(ctx context.Context, request fetcher.Request) *colly.Collector {
	userAgent := f.cfg.UserAgent
	if request.Lax || userAgent == "" {
		userAgent = f.cfg.BrowserUserAgent
	}
	collector := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
		colly.UserAgent(userAgent),
		colly.MaxBodySize(f.cfg.MaxBodySize),
	)
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	collector.ParseHTTPErrorResponse = request.Lax
	collector.DetectCharset = true

	timeout := request.Timeout
	if timeout <= 0 {
		timeout = f.cfg.Timeout
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transportFor(request))
	return collector
}

func (f *Fetcher) transportFor(request fetcher.Request) http.RoundTripper {
	if request.InsecureTLS {
		return f.insecure
	}
	return f.strict
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	request fetcher.Request,
	start time.Time,
	result *fetcher.Page,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		if request.Lax {
			r.Headers.Set("Accept", laxAccept)
			r.Headers.Set("Accept-Language", laxAcceptLanguage)
			return
		}
		r.Headers.Set("Accept", "text/html")
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = fetcher.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		// The collector carries ctx, so the in-flight request aborts promptly.
		<-done
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport(insecure bool) *http.Transport {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if insecure {
		// Several state portals serve expired or self-signed chains and
		// still negotiate only TLS 1.0.
		tlsConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in per source
			MinVersion:         tls.VersionTLS10,
		}
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
	}
}
