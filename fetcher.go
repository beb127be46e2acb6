package webgrep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/webgrep/webgrep/internal/dnscache"
)

// Fetcher is a rate-limited HTTP client bound to a single host's worth of
// traffic. It never retries and is not safe for concurrent use: only one
// request is ever in flight through a given Fetcher at a time. Callers (the
// Request Runner) enforce that by construction, moving a *Fetcher between a
// host's idle slot and an in-flight task rather than sharing it.
type Fetcher struct {
	client         *http.Client
	lastFinished   time.Time
	hasLastFinished bool
	mu             sync.Mutex // guards lastFinished bookkeeping only

	interRequestDelay time.Duration
	maxBodyBytes      int64
	userAgent         string
}

// NewFetcher builds a Fetcher bound to the given transport and config: one
// http.Client per Fetcher, sharing the process-wide Transport for
// connection pooling.
func NewFetcher(transport http.RoundTripper, cfg Config) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		interRequestDelay: cfg.InterRequestDelay,
		maxBodyBytes:      cfg.MaxBodyBytes,
		userAgent:         cfg.UserAgent,
	}
}

// NewTransport builds the master HTTP transport shared by every Fetcher,
// with DNS caching wrapped around its dialer.
func NewTransport(cfg Config) (http.RoundTripper, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	cached, err := dnscache.DialContext(t.DialContext, cfg.MaxDNSCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to construct dns-caching dialer: %w", err)
	}
	t.DialContext = cached
	return t, nil
}

// Get performs one rate-limited fetch of url. It never returns a Go error:
// every failure mode becomes a terminal FetchOutcome.Err so callers can
// cache it alongside successful outcomes.
func (f *Fetcher) Get(ctx context.Context, url string) FetchOutcome {
	f.waitForSlot(ctx)
	defer f.markFinished()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return OutcomeError(fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return OutcomeError(err.Error())
	}
	defer resp.Body.Close()

	if cl := resp.ContentLength; cl >= 0 && cl >= f.maxBodyBytes {
		return OutcomeError(fmt.Sprintf("Response too long: %d", cl))
	}

	limited := io.LimitReader(resp.Body, f.maxBodyBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return OutcomeError(fmt.Sprintf("failed to read response body: %v", err))
	}
	if int64(len(raw)) > f.maxBodyBytes {
		return OutcomeError(fmt.Sprintf("Response too long: %d", len(raw)))
	}

	return classifyBody(resp, raw)
}

// waitForSlot suspends until at least interRequestDelay has elapsed since
// the previous completed request on this Fetcher.
func (f *Fetcher) waitForSlot(ctx context.Context) {
	f.mu.Lock()
	var remaining time.Duration
	if f.hasLastFinished {
		elapsed := time.Since(f.lastFinished)
		remaining = f.interRequestDelay - elapsed
	}
	f.mu.Unlock()

	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (f *Fetcher) markFinished() {
	f.mu.Lock()
	f.lastFinished = time.Now()
	f.hasLastFinished = true
	f.mu.Unlock()
}

// classifyBody decides the Body variant from the response's Content-Type,
// decoding text with the declared charset.
func classifyBody(resp *http.Response, raw []byte) FetchOutcome {
	ctype := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ctype)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(ctype, ";", 2)[0])
	}
	mediaType = strings.ToLower(mediaType)

	switch {
	case mediaType == "application/pdf":
		return OutcomeOK(PDFBody(raw))
	case mediaType == "text/html" || mediaType == "application/xhtml+xml" || mediaType == "":
		text, err := decodeCharset(resp, raw)
		if err != nil {
			return OutcomeError(fmt.Sprintf("failed to decode response body: %v", err))
		}
		return OutcomeOK(HTMLBody(text))
	default:
		text, err := decodeCharset(resp, raw)
		if err != nil {
			return OutcomeError(fmt.Sprintf("failed to decode response body: %v", err))
		}
		return OutcomeOK(PlainBody(text))
	}
}

// decodeCharset decodes raw to UTF-8 text honoring the response's declared
// charset, via golang.org/x/net/html/charset.
func decodeCharset(resp *http.Response, raw []byte) (string, error) {
	ctype := resp.Header.Get("Content-Type")
	reader, err := charset.NewReader(bytes.NewReader(raw), ctype)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
