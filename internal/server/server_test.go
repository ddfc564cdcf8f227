package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// -----------------------------------------------------------------------------
// Handler Tests
// -----------------------------------------------------------------------------

func get(t *testing.T, h http.Handler, path string, mutate func(*http.Request)) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

// TestHandler_ServingCalendar verifies headers and body of the ICS route.
func TestHandler_ServingCalendar(t *testing.T) {
	srv := NewFeedServer("0")
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.UpdateCalendar(expectedICS)

	resp := get(t, srv.Handler(), config.RouteRoot, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

// TestHandler_ServingSnapshot verifies the JSON route is independent from the calendar.
func TestHandler_ServingSnapshot(t *testing.T) {
	srv := NewFeedServer("0")
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	cards := []engine.Card{{ID: "visa", Name: "Visa", Billing: engine.BillingProfile{CutDay: 22, PaymentDays: 1}}}
	require.NoError(t, srv.UpdateSnapshot(engine.Project(cards, now)))

	resp := get(t, srv.Handler(), config.RouteSnapshot, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "visa", decoded[0]["id"])
	assert.Equal(t, "urgent", decoded[0]["status"])

	// Calendar was never rendered.
	cal := get(t, srv.Handler(), config.RouteRoot, nil)
	defer func() { _ = cal.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, cal.StatusCode)
}

func TestHandler_EmptySnapshotIsArray(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.UpdateSnapshot(nil))

	resp := get(t, srv.Handler(), config.RouteSnapshot, nil)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}

// TestHandler_Caching verifies If-None-Match yields 304 Not Modified.
func TestHandler_Caching(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("DATA_VERSION_1"))

	first := get(t, srv.Handler(), config.RouteRoot, nil)
	_ = first.Body.Close()
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	second := get(t, srv.Handler(), config.RouteRoot, func(r *http.Request) {
		r.Header.Set(config.HeaderIfNoneMatch, etag)
	})
	defer func() { _ = second.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, second.StatusCode)
	body, _ := io.ReadAll(second.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")
}

// TestHandler_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")

	req := httptest.NewRequest(http.MethodPost, config.RouteRoot, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderAllow))
}

// TestHandler_Initializing verifies the 503 behavior when data is not yet ready.
func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0")

	resp := get(t, srv.Handler(), config.RouteRoot, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandler_BasicAuth(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("BEGIN:VCALENDAR"))
	srv.SetPassword("s3cret")

	tests := []struct {
		name string
		user string
		pass string
		set  bool
		want int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong password", config.FeedUser, "nope", true, http.StatusUnauthorized},
		{"wrong user", "someone", "s3cret", true, http.StatusUnauthorized},
		{"valid", config.FeedUser, "s3cret", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.Handler(), config.RouteRoot, func(r *http.Request) {
				if tt.set {
					r.SetBasicAuth(tt.user, tt.pass)
				}
			})
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, config.AuthRealm, resp.Header.Get(config.HeaderAuthenticate))
			}
		})
	}

	srv.SetPassword("")
	resp := get(t, srv.Handler(), config.RouteRoot, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition runs writers and readers concurrently.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0")
	h := srv.Handler()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				srv.UpdateCalendar([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				i++
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, config.RouteRoot, nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				code := w.Code
				if code != http.StatusOK && code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

func TestServer_PortRequired(t *testing.T) {
	srv := NewFeedServer("")
	assert.EqualError(t, srv.Start(context.Background()), config.ErrPortRequired)
}

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18098"

	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteRoot

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.UpdateCalendar([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}
