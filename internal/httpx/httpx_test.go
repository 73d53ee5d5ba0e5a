package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSnippet(t *testing.T) {
	testCases := []struct {
		input    string
		max      int
		expected string
	}{
		{"short text", 100, "short text"},
		{"", 100, ""},
		{"  trimmed  ", 100, "trimmed"},
		{"long text that should be truncated", 10, "long text …"},
	}

	for _, tc := range testCases {
		result := snippet([]byte(tc.input), tc.max)
		if result != tc.expected {
			t.Errorf("snippet(%q, %d) = %q, want %q", tc.input, tc.max, result, tc.expected)
		}
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{
		Method:     "POST",
		URL:        "https://fullnode.test",
		StatusCode: 404,
		Body:       []byte("Not Found"),
	}

	expected := "http error: POST https://fullnode.test status=404 body=Not Found"
	if err.Error() != expected {
		t.Errorf("HTTPError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestSingleAttempt(t *testing.T) {
	if got := SingleAttempt().MaxAttempts; got != 1 {
		t.Errorf("Expected MaxAttempts 1, got %d", got)
	}
	if got := DefaultRetryConfig().MaxAttempts; got != 4 {
		t.Errorf("Expected default MaxAttempts 4, got %d", got)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	cfg := DefaultRetryConfig()

	for _, status := range []int{429, 408, 500, 502, 503, 504} {
		if !isRetryableStatus(status, cfg) {
			t.Errorf("Expected status %d to be retryable", status)
		}
	}
	for _, status := range []int{400, 401, 403, 404, 422} {
		if isRetryableStatus(status, cfg) {
			t.Errorf("Expected status %d to not be retryable", status)
		}
	}

	cfg.Retry5xx = false
	if isRetryableStatus(500, cfg) {
		t.Error("Expected status 500 to not be retryable when Retry5xx is false")
	}
}

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "timeout error" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestIsRetryableNetErr(t *testing.T) {
	if isRetryableNetErr(context.Canceled) {
		t.Error("Expected context.Canceled to not be retryable")
	}
	if isRetryableNetErr(context.DeadlineExceeded) {
		t.Error("Expected context.DeadlineExceeded to not be retryable")
	}
	if !isRetryableNetErr(&timeoutError{}) {
		t.Error("Expected timeout error to be retryable")
	}
	if !isRetryableNetErr(errors.New("connection reset by peer")) {
		t.Error("Expected 'connection reset' error to be retryable")
	}
	if isRetryableNetErr(errors.New("some other error")) {
		t.Error("Expected 'some other error' to not be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	resp.Header.Set("Retry-After", "30")
	if d := ParseRetryAfter(resp); d != 30*time.Second {
		t.Errorf("Expected 30s, got %v", d)
	}

	resp.Header.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	if d := ParseRetryAfter(resp); d != 0 {
		t.Errorf("Expected 0 for past date, got %v", d)
	}

	resp.Header.Set("Retry-After", "invalid")
	if d := ParseRetryAfter(resp); d != 0 {
		t.Errorf("Expected 0 for invalid format, got %v", d)
	}
}

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := PostJSON(context.Background(), srv.Client(), srv.URL, nil, map[string]string{"msg": "hi"}, &out, fastRetry())
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("Expected echo 'hi', got %q", out["echo"])
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}

func TestPostJSONSingleAttemptDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, nil, SingleAttempt())

	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Expected HTTPError, got %v", err)
	}
	if herr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", herr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", calls.Load())
	}
}

func TestPostJSONInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := PostJSON(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, &out, fastRetry())
	if err == nil {
		t.Fatal("Expected json parse error")
	}
}

func TestDoWithRetryContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultRetryConfig()
	cfg.BaseDelay = time.Second
	cfg.MaxDelay = time.Second

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := DoWithRetry(ctx, srv.Client(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
