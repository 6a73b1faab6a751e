package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"movie_explorer/internal/domain"

	"github.com/sirupsen/logrus"
)

const DefaultSearchDebounce = 500 * time.Millisecond

// SearchFunc runs one page of a catalog text search.
type SearchFunc func(ctx context.Context, query string, page int) (*domain.MovieListResponse, error)

// SearchSession debounces query edits. Once the query has been idle for the
// configured delay, a fresh PagedList for it replaces the previous one.
// Responses of superseded lists are not cancelled.
type SearchSession struct {
	mu        sync.Mutex
	search    SearchFunc
	favorites FavoriteChecker
	delay     time.Duration
	log       *logrus.Logger

	timer   *time.Timer
	pending *string
	query   string
	list    *PagedList
	settled func(query string, err error)
}

func NewSearchSession(search SearchFunc, favorites FavoriteChecker, delay time.Duration, logger *logrus.Logger) *SearchSession {
	if delay < 0 {
		delay = 0
	}
	return &SearchSession{
		search:    search,
		favorites: favorites,
		delay:     delay,
		log:       logger,
	}
}

// OnSettled registers a callback run after each debounced query has been
// applied, with the error of its first page (nil for a blank query).
func (s *SearchSession) OnSettled(fn func(query string, err error)) {
	s.mu.Lock()
	s.settled = fn
	s.mu.Unlock()
}

// SetQuery records a new query and restarts the idle timer. Values carried by
// ctx are kept for the deferred search; its cancellation is not.
func (s *SearchSession) SetQuery(ctx context.Context, query string) {
	runCtx := context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	q := query
	s.pending = &q
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(runCtx, q)
	})
}

// Flush applies a pending query immediately instead of waiting for the timer.
func (s *SearchSession) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	query := *s.pending
	list := s.begin(query)
	settled := s.settled
	s.mu.Unlock()
	return s.apply(ctx, query, list, settled)
}

func (s *SearchSession) fire(ctx context.Context, query string) {
	s.mu.Lock()
	if s.pending == nil || *s.pending != query {
		s.mu.Unlock()
		return
	}
	list := s.begin(query)
	settled := s.settled
	s.mu.Unlock()
	_ = s.apply(ctx, query, list, settled)
}

// begin makes query the applied one and returns its list, nil for a blank
// query. A newer pending query is left in place. s.mu must be held.
func (s *SearchSession) begin(query string) *PagedList {
	if s.pending != nil && *s.pending == query {
		s.pending = nil
	}
	s.query = query
	if strings.TrimSpace(query) == "" {
		s.list = nil
		return nil
	}
	s.list = NewPagedList(func(ctx context.Context, page int) (*domain.MovieListResponse, error) {
		return s.search(ctx, query, page)
	}, s.favorites, s.log)
	return s.list
}

func (s *SearchSession) apply(ctx context.Context, query string, list *PagedList, settled func(string, error)) error {
	if list == nil {
		s.log.Debug("Use Case: Blank search query, clearing results")
		if settled != nil {
			settled(query, nil)
		}
		return nil
	}

	s.log.Infof("Use Case: Searching catalog for '%s'", query)
	err := list.Load(ctx)
	if settled != nil {
		settled(query, err)
	}
	return err
}

// Current returns the applied query and its list. The list is nil when the
// query is blank or nothing has been applied yet.
func (s *SearchSession) Current() (string, *PagedList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.list
}

// Stop cancels a pending timer.
func (s *SearchSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}
