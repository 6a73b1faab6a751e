package usecase

import (
	"context"
	"sync"

	"movie_explorer/internal/domain"

	"github.com/sirupsen/logrus"
)

// FavoriteChecker reports whether a movie is in the caller's favorites.
type FavoriteChecker interface {
	Contains(ctx context.Context, movieID int) bool
}

// MovieItem is a list entry annotated with its favorite status.
type MovieItem struct {
	domain.Movie
	IsFavorite bool `json:"is_favorite"`
}

// ListState is a point-in-time view of a PagedList.
type ListState struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	HasMore      bool        `json:"has_more"`
	Loading      bool        `json:"loading"`
	Error        string      `json:"error,omitempty"`
	Items        []MovieItem `json:"items"`
}

type pageRequest struct {
	page   int
	append bool
}

// PagedList accumulates pages of a movie listing. A new list is at page 0
// with hasMore set, so the first LoadMore fetches page 1.
type PagedList struct {
	mu        sync.Mutex
	fetch     domain.PageFetcher
	favorites FavoriteChecker
	log       *logrus.Logger

	items        []domain.Movie
	page         int
	totalPages   int
	totalResults int
	hasMore      bool
	loading      bool
	err          error
	last         *pageRequest
}

func NewPagedList(fetch domain.PageFetcher, favorites FavoriteChecker, logger *logrus.Logger) *PagedList {
	return &PagedList{
		fetch:     fetch,
		favorites: favorites,
		log:       logger,
		items:     []domain.Movie{},
		hasMore:   true,
	}
}

// Load fetches page 1 and replaces the accumulated items.
func (l *PagedList) Load(ctx context.Context) error {
	l.mu.Lock()
	req := l.arm(pageRequest{page: 1, append: false})
	l.mu.Unlock()
	return l.run(ctx, req)
}

// LoadMore appends the next page. It does nothing while a request is in
// flight or once the last page has been seen.
func (l *PagedList) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	req := l.arm(pageRequest{page: l.page + 1, append: true})
	l.mu.Unlock()
	return l.run(ctx, req)
}

// Retry re-issues the most recent request with the same page and mode. With
// no previous request it behaves like Load.
func (l *PagedList) Retry(ctx context.Context) error {
	l.mu.Lock()
	req := pageRequest{page: 1}
	if l.last != nil {
		req = *l.last
	}
	req = l.arm(req)
	l.mu.Unlock()
	return l.run(ctx, req)
}

// arm marks req as in flight. l.mu must be held.
func (l *PagedList) arm(req pageRequest) pageRequest {
	l.loading = true
	l.err = nil
	l.last = &req
	return req
}

// run performs a request already armed by the caller.
func (l *PagedList) run(ctx context.Context, req pageRequest) error {
	resp, err := l.fetch(ctx, req.page)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.log.Warnf("Use Case: Failed to load page %d: %v", req.page, err)
		l.err = err
		return err
	}

	if req.append {
		l.items = append(l.items, resp.Results...)
	} else {
		l.items = append([]domain.Movie{}, resp.Results...)
	}
	l.page = req.page
	l.totalPages = resp.TotalPages
	l.totalResults = resp.TotalResults
	l.hasMore = req.page < resp.TotalPages
	l.log.Debugf("Use Case: Loaded page %d of %d (%d items held)", req.page, resp.TotalPages, len(l.items))
	return nil
}

// Items returns a copy of the accumulated movies with favorite flags
// evaluated now.
func (l *PagedList) Items(ctx context.Context) []MovieItem {
	l.mu.Lock()
	movies := append([]domain.Movie(nil), l.items...)
	l.mu.Unlock()

	items := make([]MovieItem, 0, len(movies))
	for _, m := range movies {
		item := MovieItem{Movie: m}
		if l.favorites != nil {
			item.IsFavorite = l.favorites.Contains(ctx, m.ID)
		}
		items = append(items, item)
	}
	return items
}

func (l *PagedList) State(ctx context.Context) ListState {
	l.mu.Lock()
	state := ListState{
		Page:         l.page,
		TotalPages:   l.totalPages,
		TotalResults: l.totalResults,
		HasMore:      l.hasMore,
		Loading:      l.loading,
	}
	if l.err != nil {
		state.Error = l.err.Error()
	}
	l.mu.Unlock()
	state.Items = l.Items(ctx)
	return state
}

func (l *PagedList) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *PagedList) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

func (l *PagedList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error of the most recent request, or nil.
func (l *PagedList) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// FetchPage loads a single page outside of any accumulated list.
func FetchPage(ctx context.Context, fetch domain.PageFetcher, page int, favorites FavoriteChecker, logger *logrus.Logger) (ListState, error) {
	if page < 1 {
		page = 1
	}
	l := NewPagedList(fetch, favorites, logger)
	l.mu.Lock()
	req := l.arm(pageRequest{page: page})
	l.mu.Unlock()
	if err := l.run(ctx, req); err != nil {
		return ListState{}, err
	}
	return l.State(ctx), nil
}
