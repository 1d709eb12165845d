package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"eleya-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSessionTTL = 30 * time.Minute
	DefaultDebounce   = 150 * time.Millisecond
)

var (
	ErrSessionNotFound = errors.New("browse session not found")
	ErrSuperseded      = errors.New("superseded by a newer browse request")
)

// SessionConfig tunes browse sessions
type SessionConfig struct {
	TTL      time.Duration
	Debounce time.Duration
}

// BrowseSession is the server-side filter state of one collection page.
// Each dispatched action issues one fetch; a newer action cancels the older fetch.
type BrowseSession struct {
	ID uuid.UUID

	mu        sync.Mutex
	filters   domain.FilterState
	view      *CollectionView
	corpusMax decimal.Decimal
	seq       uint64
	cancel    context.CancelFunc
	lastSeen  time.Time
}

// Filters returns a copy of the current filter state
func (b *BrowseSession) Filters() domain.FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters.Clone()
}

// View returns the last completed view, or nil before the first fetch finishes
func (b *BrowseSession) View() *CollectionView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// SessionStore holds browse sessions and evicts idle ones
type SessionStore struct {
	collections CollectionService
	config      SessionConfig
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*BrowseSession
}

// NewSessionStore creates an empty store
func NewSessionStore(collections CollectionService, config SessionConfig, logger *zap.Logger) *SessionStore {
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}
	if config.Debounce < 0 {
		config.Debounce = 0
	}
	return &SessionStore{
		collections: collections,
		config:      config,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*BrowseSession),
	}
}

// Open creates a session seeded with filters and loads its first view
func (s *SessionStore) Open(ctx context.Context, filters domain.FilterState) (*BrowseSession, *CollectionView, error) {
	sess := &BrowseSession{
		ID:       uuid.New(),
		filters:  filters.Clone(),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("Browse session opened", zap.String("session_id", sess.ID.String()))

	view, err := s.fetch(ctx, sess, false)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
		return nil, nil, err
	}
	return sess, view, nil
}

// Get returns a live session. Expired sessions are evicted on access.
func (s *SessionStore) Get(id uuid.UUID) (*BrowseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(sess) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// Dispatch applies action to the session and fetches the resulting view.
// An invalid action leaves the state untouched. If another action arrives before
// the fetch completes, this call returns ErrSuperseded and its result is discarded.
func (s *SessionStore) Dispatch(ctx context.Context, id uuid.UUID, action domain.FilterAction) (*CollectionView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, err := sess.filters.Apply(action)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	if _, ok := action.(domain.SetPriceRange); ok {
		next = next.ClampPriceRange(sess.corpusMax)
	}
	sess.filters = next
	sess.mu.Unlock()

	s.logger.Debug("Browse action applied",
		zap.String("session_id", id.String()),
		zap.String("action", action.Kind()),
		zap.Int("active_filters", next.ActiveCount()),
	)

	return s.fetch(ctx, sess, true)
}

func (s *SessionStore) fetch(ctx context.Context, sess *BrowseSession, debounce bool) (*CollectionView, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.seq++
	seq := sess.seq
	sess.cancel = cancel
	sess.lastSeen = s.now()
	filters := sess.filters.Clone()
	sess.mu.Unlock()

	var view *CollectionView
	var err error

	waited := true
	if debounce && s.config.Debounce > 0 {
		timer := time.NewTimer(s.config.Debounce)
		select {
		case <-timer.C:
		case <-fetchCtx.Done():
			timer.Stop()
			waited = false
			err = fetchCtx.Err()
		}
	}
	if waited {
		view, err = s.collections.Browse(fetchCtx, filters)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.seq != seq {
		return nil, ErrSuperseded
	}
	sess.cancel = nil
	if err != nil {
		return nil, err
	}
	sess.view = view
	if view.Facets.MaxPrice.GreaterThan(sess.corpusMax) {
		sess.corpusMax = view.Facets.MaxPrice
	}
	return view, nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on interval until ctx is done
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.config.TTL / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("Evicted idle browse sessions", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of sessions held, including expired ones not yet swept
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// expired must be called with s.mu held
func (s *SessionStore) expired(sess *BrowseSession) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.now().Sub(sess.lastSeen) > s.config.TTL
}
