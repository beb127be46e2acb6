package webgrep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = 2 * time.Second
	cfg.RequestTimeout = 2 * time.Second
	cfg.InterRequestDelay = 50 * time.Millisecond
	return cfg
}

func newTestFetcher(t *testing.T, cfg Config) *Fetcher {
	t.Helper()
	transport, err := NewTransport(cfg)
	if err != nil {
		t.Fatalf("failed to build transport: %v", err)
	}
	return NewFetcher(transport, cfg)
}

func TestFetcherGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello needle world</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	outcome := f.Get(context.Background(), srv.URL)
	if !outcome.Success() {
		t.Fatalf("expected success, got error: %v", outcome.Err)
	}
	if outcome.Body.Kind != BodyHTML {
		t.Errorf("expected BodyHTML, got %v", outcome.Body.Kind)
	}
}

func TestFetcherGetOversizeFailsByContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "209715200") // 200 MiB, advertised only
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	f := newTestFetcher(t, cfg)
	outcome := f.Get(context.Background(), srv.URL)
	if outcome.Success() {
		t.Fatal("expected oversize response to fail")
	}
}

func TestFetcherGetTransportError(t *testing.T) {
	f := newTestFetcher(t, testConfig())
	outcome := f.Get(context.Background(), "http://127.0.0.1:1/unreachable")
	if outcome.Success() {
		t.Fatal("expected a transport error")
	}
}

func TestFetcherEnforcesInterRequestDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.InterRequestDelay = 150 * time.Millisecond
	f := newTestFetcher(t, cfg)

	start := time.Now()
	f.Get(context.Background(), srv.URL)
	first := time.Since(start)

	start = time.Now()
	f.Get(context.Background(), srv.URL)
	second := time.Since(start)

	if second < cfg.InterRequestDelay-10*time.Millisecond {
		t.Errorf("expected second request to wait ~%v, waited %v (first took %v)", cfg.InterRequestDelay, second, first)
	}
}

func TestClassifyBodyPDF(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Content-Type": []string{"application/pdf"}}}
	outcome := classifyBody(resp, []byte("%PDF-1.4 raw bytes"))
	if !outcome.Success() || outcome.Body.Kind != BodyPDF {
		t.Fatalf("expected a successful PDF body, got %+v", outcome)
	}
}

func TestClassifyBodyPlain(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}}}
	outcome := classifyBody(resp, []byte("needle in plain text"))
	if !outcome.Success() || outcome.Body.Kind != BodyPlain {
		t.Fatalf("expected a successful Plain body, got %+v", outcome)
	}
}
