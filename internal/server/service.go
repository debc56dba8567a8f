// Package server exposes a ledger over a local HTTP API with a server-sent
// event stream of every change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/pocket/internal/ledger"
	"github.com/theirongolddev/pocket/internal/log"
)

// Event types published on the stream.
const (
	EventSnapshot      = "snapshot"
	EventIncome        = "income_changed"
	EventFixedExpenses = "fixed_expenses_changed"
	EventDraft         = "draft_changed"
	EventExpenseAdded  = "expense_committed"
	EventLockToggled   = "lock_toggled"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	DataDir      string
	Backend      string
	EventsBuffer int
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

// Summary is the derived budget state carried by status and events.
type Summary struct {
	Income           string  `json:"income"`
	FixedExpenses    string  `json:"fixed_expenses"`
	VariableTotal    float64 `json:"variable_total"`
	AvailableBalance float64 `json:"available_balance"`
	Entries          int     `json:"entries"`
	Editable         bool    `json:"editable"`
}

// Event is emitted whenever the ledger or the edit lock changes.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Source    string        `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
	Summary   Summary       `json:"summary"`
	Entry     *ledger.Entry `json:"entry,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	InstanceID      string    `json:"instance_id"`
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	DataDir         string    `json:"data_dir,omitempty"`
	Backend         string    `json:"backend,omitempty"`
	Summary         Summary   `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service owns a ledger and its edit lock and serves them over HTTP.
type Service struct {
	cfg        Config
	logger     *log.Logger
	instanceID string

	mu          sync.RWMutex
	ledger      *ledger.Ledger
	lock        *ledger.EditLock
	startedAt   time.Time
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger.WithComponent(log.ComponentServer) }
}

// New returns a service around l. The lock decides whether fixed values may
// be changed through the API.
func New(cfg Config, l *ledger.Ledger, lock *ledger.EditLock, opts ...Option) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if lock == nil {
		lock = ledger.NewEditLock(ledger.Editable)
	}

	s := &Service{
		cfg:        cfg,
		logger:     log.Discard(),
		instanceID: uuid.NewString(),
		ledger:     l,
		lock:       lock,
		startedAt:  time.Now(),
		subs:       make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InstanceID identifies this server process in status and events.
func (s *Service) InstanceID() string { return s.instanceID }

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/ledger", s.handleLedger)
		r.Put("/income", s.handleSetIncome)
		r.Put("/fixed-expenses", s.handleSetFixedExpenses)
		r.Get("/draft", s.handleGetDraft)
		r.Patch("/draft", s.handlePatchDraft)
		r.Post("/draft/commit", s.handleCommitDraft)
		r.Post("/expenses", s.handleAddExpense)
		r.Post("/lock/toggle", s.handleToggleLock)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run serves the API on cfg.Addr until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is canceled.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("server listening",
		log.FieldOperation, log.OpStartup,
		log.FieldAddr, ln.Addr().String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// summaryLocked must be called with s.mu held.
func (s *Service) summaryLocked() Summary {
	return Summary{
		Income:           s.ledger.FixedIncome(),
		FixedExpenses:    s.ledger.FixedExpenses(),
		VariableTotal:    s.ledger.VariableTotal(),
		AvailableBalance: s.ledger.AvailableBalance(),
		Entries:          len(s.ledger.Entries()),
		Editable:         s.lock.Editable(),
	}
}

// recordLocked notes the outcome of a store write. It must be called with
// s.mu held for writing.
func (s *Service) recordLocked(err error) {
	if err != nil {
		s.lastError = err.Error()
		s.logger.Error("store write failed", log.FieldOperation, log.OpSave, log.FieldError, err)
		return
	}
	s.lastError = ""
}

// newEventLocked must be called with s.mu held for writing.
func (s *Service) newEventLocked(typ string, entry *ledger.Entry) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Source:    s.instanceID,
		Timestamp: time.Now(),
		Summary:   s.summaryLocked(),
		Entry:     entry,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.publishLocked(ev)
	s.mu.Unlock()
}

// publishLocked appends ev to the ring buffer and fans it out to stream
// subscribers. Slow subscribers miss events rather than block writers.
func (s *Service) publishLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		InstanceID:      s.instanceID,
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		DataDir:         s.cfg.DataDir,
		Backend:         s.cfg.Backend,
		Summary:         s.summaryLocked(),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	s.mu.RLock()
	current := Event{
		Type:      EventSnapshot,
		Source:    s.instanceID,
		Timestamp: time.Now(),
		Summary:   s.summaryLocked(),
	}
	s.mu.RUnlock()
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
