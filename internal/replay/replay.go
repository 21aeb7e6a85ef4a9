package replay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vesseltrack/internal/domain"
)

// Session is one live replay over a dataset's merged rows. The handler owns
// the websocket; the session owns pacing state and the stop signal.
type Session struct {
	ID        string
	DatasetID string
	Speed     float64

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewSession(datasetID string, speed float64, cancel context.CancelFunc) *Session {
	return &Session{
		ID:        uuid.NewString(),
		DatasetID: datasetID,
		Speed:     speed,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels the session's playback. Safe to call multiple times.
func (s *Session) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
}

// Done is closed once the session has been stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Registry tracks live replay sessions so shutdown can stop them all and the
// stats endpoint can count them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	register   chan *Session
	unregister chan *Session

	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session, 16),
		unregister: make(chan *Session, 16),
		logger:     logger.With("component", "replay_registry"),
	}
}

// Run processes registration traffic until the context is done, then stops
// every remaining session.
func (r *Registry) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.stopAll()
			return

		case s := <-r.register:
			r.mu.Lock()
			r.sessions[s.ID] = s
			total := len(r.sessions)
			r.mu.Unlock()
			r.logger.Debug("session registered", "session_id", s.ID, "dataset_id", s.DatasetID, "total", total)

		case s := <-r.unregister:
			r.mu.Lock()
			delete(r.sessions, s.ID)
			total := len(r.sessions)
			r.mu.Unlock()
			r.logger.Debug("session unregistered", "session_id", s.ID, "total", total)
		}
	}
}

func (r *Registry) Register(s *Session) {
	r.register <- s
}

func (r *Registry) Unregister(s *Session) {
	r.unregister <- s
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.Stop()
	}
	r.sessions = make(map[string]*Session)
}

// StepDelay returns how long playback should wait between two samples: the
// recorded spacing divided by the speed factor, capped at maxStep so gaps and
// berth idle time do not stall the stream. Unparseable or non-increasing
// timestamps advance immediately.
func StepDelay(prev, next domain.RawDataRow, speed float64, maxStep time.Duration) time.Duration {
	if speed <= 0 {
		return 0
	}
	pt, okPrev := prev.ParsedTime()
	nt, okNext := next.ParsedTime()
	if !okPrev || !okNext {
		return 0
	}
	delta := nt.Sub(pt)
	if delta <= 0 {
		return 0
	}

	scaled := time.Duration(float64(delta) / speed)
	if maxStep > 0 && scaled > maxStep {
		return maxStep
	}
	return scaled
}
