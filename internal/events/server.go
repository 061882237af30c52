package events

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Event is one notification callback delivered by the device.
type Event struct {
	Type       string
	RemoteAddr string
	Time       time.Time
}

// Server receives the HTTP GET callbacks a DoorBird unit issues for
// subscribed notifications and delivers them as Events.
type Server struct {
	addr      string
	token     string
	router    chi.Router
	events    chan Event
	logger    zerolog.Logger
	limiter   *RateLimiter
	server    *http.Server
	mu        sync.Mutex
	running   bool
	closeOnce sync.Once
}

// NewServer returns a receiver listening on addr. When token is non-empty,
// callbacks must present it in the X-Auth-Token header or a token query
// parameter.
func NewServer(addr, token string, logger zerolog.Logger) *Server {
	s := &Server{
		addr:    addr,
		token:   token,
		events:  make(chan Event, 16),
		logger:  logger,
		limiter: NewRateLimiter(60, time.Minute),
	}

	r := chi.NewRouter()
	r.Get("/events/{event}", s.limiter.Middleware(s.handleEvent))
	r.Get("/health", s.handleHealth)
	s.router = r

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("event listener starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("event listener error")
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("graceful shutdown failed, forcing close")
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.closeOnce.Do(func() {
		close(s.events)
	})
	s.running = false
	return nil
}

// Next blocks until the device delivers the next event or ctx is done.
func (s *Server) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev, ok := <-s.events:
		if !ok {
			return Event{}, fmt.Errorf("event channel closed")
		}
		return ev, nil
	}
}

// Handler exposes the router for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// CallbackURL returns the URL the device should call for the given event
// type, rooted at the externally reachable base URL.
func (s *Server) CallbackURL(baseURL, event string) string {
	u := strings.TrimSuffix(baseURL, "/") + "/events/" + event
	if s.token != "" {
		u += "?token=" + url.QueryEscape(s.token)
	}
	return u
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if s.token != "" {
		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.token {
			s.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("unauthorized event callback")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	ev := Event{
		Type:       chi.URLParam(r, "event"),
		RemoteAddr: r.RemoteAddr,
		Time:       time.Now(),
	}

	select {
	case s.events <- ev:
		s.logger.Info().Str("event", ev.Type).Str("remote_addr", ev.RemoteAddr).Msg("device event received")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	default:
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	queued := len(s.events)
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"queued":%d}`, status, running, queued)
}
