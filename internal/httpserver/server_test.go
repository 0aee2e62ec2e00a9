package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/price-sniffer/internal/testutil"
	"github.com/Sternrassler/price-sniffer/pkg/cache"
	"github.com/Sternrassler/price-sniffer/pkg/pricing"
	"github.com/Sternrassler/price-sniffer/pkg/provider"
	"github.com/Sternrassler/price-sniffer/pkg/search"
)

// fakeSearcher records requests and answers with a fixed result or error.
type fakeSearcher struct {
	mu       sync.Mutex
	requests []search.Request
	result   *search.Result
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) (*search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSearcher) calls() []search.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]search.Request(nil), f.requests...)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(s Searcher, p Pinger) http.Handler {
	return NewRouter(s, p, DefaultConfig(), zerolog.Nop())
}

func sampleResult() *search.Result {
	offers := []pricing.Offer{
		{Title: "Phone", Price: 799.99, FormattedPrice: "$799.99", Merchant: "Walmart", Link: "#"},
	}
	return &search.Result{
		Query:  "iphone",
		Stats:  pricing.ComputeStats(offers),
		Items:  offers,
		Source: search.SourceProvider,
	}
}

func postForm(t *testing.T, h http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, h http.Handler, query string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if query != "" {
		if err := mw.WriteField("query", query); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/search", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, body io.Reader) string {
	t.Helper()

	var resp ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Detail
}

func TestSearchHandler_FormQuery(t *testing.T) {
	searcher := &fakeSearcher{result: sampleResult()}
	h := newTestRouter(searcher, fakePinger{})

	w := postForm(t, h, url.Values{"query": {"iphone"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	calls := searcher.calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 search, got %d", len(calls))
	}
	if calls[0].Query != "iphone" || calls[0].Image != nil {
		t.Errorf("Unexpected request: %+v", calls[0])
	}

	var got search.Result
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got.Source != search.SourceProvider || len(got.Items) != 1 {
		t.Errorf("Unexpected result: %+v", got)
	}
	if got.Stats.Currency != pricing.Currency {
		t.Errorf("Currency = %q, want %q", got.Stats.Currency, pricing.Currency)
	}
}

func TestSearchHandler_MultipartFile(t *testing.T) {
	searcher := &fakeSearcher{result: sampleResult()}
	h := newTestRouter(searcher, fakePinger{})

	w := postMultipart(t, h, "ignored", "phone.jpg", []byte("\xff\xd8\xff fake jpeg"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	calls := searcher.calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 search, got %d", len(calls))
	}
	img := calls[0].Image
	if img == nil {
		t.Fatal("Expected image in request")
	}
	if img.Filename != "phone.jpg" {
		t.Errorf("Filename = %q, want phone.jpg", img.Filename)
	}
	if img.Size != int64(len("\xff\xd8\xff fake jpeg")) {
		t.Errorf("Size = %d", img.Size)
	}
	if calls[0].Query != "ignored" {
		t.Errorf("Query = %q, want ignored", calls[0].Query)
	}
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		values     url.Values
		wantStatus int
		wantDetail string
		wantCalls  int
	}{
		{
			name:       "missing input",
			err:        search.ErrMissingInput,
			values:     url.Values{},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Please provide query.",
			wantCalls:  1,
		},
		{
			name: "provider failure",
			err: &provider.ProviderError{
				ErrorClass: provider.ErrorClassClient,
				StatusCode: http.StatusForbidden,
				Message:    "403 Forbidden",
			},
			values:     url.Values{"query": {"iphone"}},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
		{
			name:       "query too long",
			values:     url.Values{"query": {strings.Repeat("a", maxQueryLength+1)}},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Query must be at most 256 characters.",
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{result: sampleResult(), err: tt.err}
			h := newTestRouter(searcher, fakePinger{})

			w := postForm(t, h, tt.values)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			detail := decodeDetail(t, w.Body)
			wantDetail := tt.wantDetail
			if wantDetail == "" {
				wantDetail = tt.err.Error()
			}
			if detail != wantDetail {
				t.Errorf("detail = %q, want %q", detail, wantDetail)
			}

			if got := len(searcher.calls()); got != tt.wantCalls {
				t.Errorf("Expected %d searches, got %d", tt.wantCalls, got)
			}
		})
	}
}

func TestSearchHandler_UploadTooLarge(t *testing.T) {
	searcher := &fakeSearcher{result: sampleResult()}
	h := NewRouter(searcher, fakePinger{}, Config{MaxUploadBytes: 1024}, zerolog.Nop())

	w := postMultipart(t, h, "", "big.jpg", bytes.Repeat([]byte("x"), 4096))

	if w.Code == http.StatusOK {
		t.Fatal("Expected oversized upload to be rejected")
	}
	if got := len(searcher.calls()); got != 0 {
		t.Errorf("Expected no searches, got %d", got)
	}
}

func TestSearchHandler_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
	}{
		{name: "ready", pinger: fakePinger{}, wantStatus: http.StatusOK},
		{name: "cache disabled", pinger: cache.NopStore{}, wantStatus: http.StatusOK},
		{name: "cache down", pinger: fakePinger{err: errors.New("connection refused")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeSearcher{}, tt.pinger)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeSearcher{}, fakePinger{})

	// produce at least one sample
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "# HELP") || !strings.Contains(body, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(body, `sniffer_http_requests_total{route="/health",status="200"}`) {
		t.Error("Expected metrics output to contain the /health request counter")
	}
}

func TestCORS(t *testing.T) {
	h := newTestRouter(&fakeSearcher{result: sampleResult()}, fakePinger{})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want the request origin", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		req.Header.Set("Origin", "https://frontend.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code >= 300 {
			t.Errorf("Expected 2xx preflight response, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://frontend.example" {
			t.Errorf("Access-Control-Allow-Origin = %q, want the request origin", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
		}
	})

	t.Run("credentialed search", func(t *testing.T) {
		form := url.Values{"query": {"iphone"}}
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", "https://shop.example")
		req.Header.Set("Cookie", "session=abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got == "*" || got != "https://shop.example" {
			t.Errorf("Access-Control-Allow-Origin = %q, want https://shop.example", got)
		}
	})
}

func TestSearchEndpoint_EndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewManager(redisClient)
	t.Cleanup(func() { store.Close() })

	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse(testutil.NewShoppingResponse(testutil.IPhoneFixture()...))

	cfg := provider.DefaultConfig("test-key")
	cfg.Endpoint = mock.URL()
	cfg.Timeout = 5 * time.Second
	client, err := provider.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create provider client: %v", err)
	}

	pipeline, err := search.New(client, store, search.StubRecognizer{Product: "iPhone 15"}, search.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}

	h := newTestRouter(pipeline, store)

	sources := []string{search.SourceProvider, search.SourceCache}
	for i, want := range sources {
		w := postForm(t, h, url.Values{"query": {"  iPhone 15 "}})
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d: %s", i, w.Code, w.Body.String())
		}

		var got search.Result
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("request %d: decode: %v", i, err)
		}
		if got.Source != want {
			t.Errorf("request %d: source = %q, want %q", i, got.Source, want)
		}
		if len(got.Items) != 3 || got.Items[0].Price != 799.99 {
			t.Errorf("request %d: unexpected items %+v", i, got.Items)
		}
		if got.Stats.AvgPrice != 966 {
			t.Errorf("request %d: avg = %v, want 966", i, got.Stats.AvgPrice)
		}
	}

	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("Expected 1 provider call, got %d", n)
	}

	// image upload resolves to the stub product, which is now cached
	w := postMultipart(t, h, "", "photo.png", []byte("png"))
	if w.Code != http.StatusOK {
		t.Fatalf("image request: expected status 200, got %d", w.Code)
	}
	var got search.Result
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("image request: decode: %v", err)
	}
	if got.Query != "iPhone 15" || got.Source != search.SourceCache {
		t.Errorf("image request: query=%q source=%q", got.Query, got.Source)
	}

	// empty form reaches the pipeline and is rejected there
	w = postForm(t, h, url.Values{"query": {"   "}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank query: expected status 400, got %d", w.Code)
	}
}
