// Package daemon provides the long-running contribution poller and its
// HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/mchango/internal/config"
	"github.com/theirongolddev/mchango/internal/model"
	"github.com/theirongolddev/mchango/internal/notify"
	"github.com/theirongolddev/mchango/internal/pipeline"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventContributions = "contributions"
	EventShutdown      = "shutdown"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	CORSOrigins  []string
	Static       config.Static
}

// Snapshot is a compact contribution state for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	GrandTotal   float64   `json:"grand_total"`
	Departments  int       `json:"departments"`
	Transactions int       `json:"transactions"`
	Recent       int       `json:"recent"`
	Dropped      int       `json:"dropped,omitempty"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	GrandTotal   float64 `json:"grand_total"`
	Transactions int     `json:"transactions"`
}

func (d Delta) isZero() bool {
	return d.GrandTotal == 0 && d.Transactions == 0
}

// Event is emitted on the first poll and whenever new contributions appear.
type Event struct {
	ID            int64               `json:"id"`
	Type          string              `json:"type"`
	Timestamp     time.Time           `json:"timestamp"`
	Snapshot      Snapshot            `json:"snapshot"`
	Delta         Delta               `json:"delta"`
	Contributions []model.Transaction `json:"contributions,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	PID             int       `json:"pid"`
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg       Config
	fetcher   pipeline.Fetcher
	publisher notify.Publisher
	log       zerolog.Logger
	metrics   *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	board       *pipeline.Board
	snapshot    Snapshot
	seen        map[string]struct{}
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
	drain     chan struct{} // closed on shutdown, ends every stream
	drainOnce sync.Once
}

// New returns a new daemon service. A nil publisher disables notifications.
func New(cfg Config, f pipeline.Fetcher, pub notify.Publisher, log zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if pub == nil {
		pub = notify.Nop{}
	}

	return &Service{
		cfg:       cfg,
		fetcher:   f,
		publisher: pub,
		log:       log,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		drain:     make(chan struct{}),
	}
}

// Run serves HTTP and polls until ctx is canceled or the server fails.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("daemon listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		// Streams never go idle, so they must end before Shutdown can finish.
		if n := s.drainSubscribers(); n > 0 {
			s.log.Info().Int("subscribers", n).Msg("draining event streams")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// Seed initial snapshot so status is useful immediately.
		s.pollOnce(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(ctx)
			}
		}
	})

	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	s.metrics.polls.Inc()
	board, err := pipeline.Load(ctx, s.fetcher, s.cfg.Static)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.metrics.pollErrors.Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("poll failed, keeping previous snapshot")
		return
	}
	s.apply(ctx, board)
}

// apply installs a freshly loaded board and emits events for what changed.
func (s *Service) apply(ctx context.Context, board *pipeline.Board) {
	now := board.FetchedAt
	snap := snapshotFromBoard(board)
	s.metrics.observe(board.Rows, board.Publicity.GrandTotal)

	var (
		ev      Event
		publish bool
		fresh   []model.Transaction
	)

	s.mu.Lock()
	prev := s.snapshot
	first := s.board == nil

	if !first {
		fresh = newTransactions(s.seen, board.Publicity.Transactions)
	}
	s.seen = transactionKeys(board.Publicity.Transactions)
	s.board = board
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if first {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if len(fresh) > 0 || !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:            s.nextEventID,
				Type:          EventContributions,
				Timestamp:     now,
				Snapshot:      snap,
				Delta:         delta,
				Contributions: fresh,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
	if len(fresh) > 0 {
		s.metrics.newContributions.Add(float64(len(fresh)))
		s.log.Info().Int("count", len(fresh)).Float64("grand_total", snap.GrandTotal).Msg("new contributions")
		if err := s.publisher.Publish(ctx, fresh); err != nil {
			s.log.Warn().Err(err).Msg("publishing contributions")
		}
	}
}

func snapshotFromBoard(b *pipeline.Board) Snapshot {
	return Snapshot{
		At:           b.FetchedAt,
		GrandTotal:   b.Publicity.GrandTotal,
		Departments:  len(b.Rows),
		Transactions: len(b.Publicity.Transactions),
		Recent:       len(b.Recent.Transactions),
		Dropped:      b.Recent.Dropped,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		GrandTotal:   curr.GrandTotal - prev.GrandTotal,
		Transactions: curr.Transactions - prev.Transactions,
	}
}

func transactionKeys(txs []model.Transaction) map[string]struct{} {
	keys := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		keys[tx.Key()] = struct{}{}
	}
	return keys
}

// newTransactions returns txs whose identity is not in seen, in input order.
func newTransactions(seen map[string]struct{}, txs []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txs {
		if _, ok := seen[tx.Key()]; !ok {
			out = append(out, tx)
		}
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
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
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		PID:             os.Getpid(),
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) currentBoard() *pipeline.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.subscribers.Set(float64(len(s.subs)))
	return id
}

// drainSubscribers tells every open stream to say goodbye and close. It
// returns how many streams were open.
func (s *Service) drainSubscribers() int {
	s.mu.RLock()
	n := len(s.subs)
	s.mu.RUnlock()
	s.drainOnce.Do(func() { close(s.drain) })
	return n
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.subscribers.Set(float64(len(s.subs)))
}
