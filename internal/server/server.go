package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// cacheItem stores a rendered document and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	contentType  string
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// FeedServer serves the reminder calendar and the card snapshot over HTTP on
// the loopback interface.
type FeedServer struct {
	// Each route has its own lock-free cache. Clients poll far more often
	// than the content changes.
	calendar atomic.Pointer[cacheItem]
	snapshot atomic.Pointer[cacheItem]

	// password enables HTTP basic auth when non-empty.
	password atomic.Pointer[string]

	Port string
}

// NewFeedServer creates a new instance of the server.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port: port,
	}
}

// SetPassword enables basic auth for every route. An empty password disables it.
func (s *FeedServer) SetPassword(password string) {
	if password == "" {
		s.password.Store(nil)
		slog.Info(config.MsgFeedAuthDisabled, config.LogKeyComponent, config.CompServer)
		return
	}
	s.password.Store(&password)
	slog.Info(config.MsgFeedAuthEnabled, config.LogKeyComponent, config.CompServer)
}

// Handler returns the route multiplexer.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.serve(&s.calendar))
	mux.HandleFunc(config.RouteSnapshot, s.serve(&s.snapshot))
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateCalendar atomically replaces the iCalendar document served at "/".
func (s *FeedServer) UpdateCalendar(data []byte) {
	s.calendar.Store(newCacheItem(data, config.MimeTextCalendar, config.RouteRoot))
}

// UpdateSnapshot atomically replaces the JSON card snapshot.
func (s *FeedServer) UpdateSnapshot(snaps []engine.Snapshot) error {
	if snaps == nil {
		snaps = []engine.Snapshot{}
	}
	data, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotEncode, err)
	}
	s.snapshot.Store(newCacheItem(data, config.MimeJSON, config.RouteSnapshot))
	return nil
}

func newCacheItem(data []byte, contentType, route string) *cacheItem {
	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		contentType:  contentType,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
	return item
}

// serve returns a handler for one cached document with HTTP caching support.
func (s *FeedServer) serve(cache *atomic.Pointer[cacheItem]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		if !s.authorized(r) {
			w.Header().Set(config.HeaderAuthenticate, config.AuthRealm)
			http.Error(w, config.HTTPMsgUnauthorized, http.StatusUnauthorized)
			return
		}

		item := cache.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set(config.HeaderContentType, item.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, item.etag)
		w.Header().Set(config.HeaderLastModified, item.lastModified)

		if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
			if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
				if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
					if !serverTime.After(clientTime) {
						w.WriteHeader(http.StatusNotModified)
						return
					}
				}
			}
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err,
				)
			}
		}
	}
}

func (s *FeedServer) authorized(r *http.Request) bool {
	want := s.password.Load()
	if want == nil {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(config.FeedUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(*want)) == 1
	return userOK && passOK
}
