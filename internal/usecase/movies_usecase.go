package usecase

import (
	"context"
	"fmt"
	"strings"

	"movie_explorer/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MainCastSize is how many billed cast members a detail page shows.
const MainCastSize = 8

// Listing names one of the browsable catalog feeds.
type Listing string

const (
	ListingPopular    Listing = "popular"
	ListingNowPlaying Listing = "now-playing"
	ListingTopRated   Listing = "top-rated"
)

// MovieDetailPage is everything the detail view renders.
type MovieDetailPage struct {
	Details    *domain.MovieDetails `json:"details"`
	Credits    *domain.MovieCredits `json:"credits"`
	MainCast   []domain.CastMember  `json:"main_cast"`
	Director   *domain.CrewMember   `json:"director,omitempty"`
	Runtime    string               `json:"runtime"`
	IsFavorite bool                 `json:"is_favorite"`
}

type MovieUseCase interface {
	Fetcher(listing Listing) (domain.PageFetcher, error)
	Search(ctx context.Context, query string, page int) (*domain.MovieListResponse, error)
	Details(ctx context.Context, movieID int) (*domain.MovieDetails, error)
	Credits(ctx context.Context, movieID int) (*domain.MovieCredits, error)
	DetailPage(ctx context.Context, movieID int) (*MovieDetailPage, error)
}

type movieUseCase struct {
	catalog   domain.CatalogClient
	favorites FavoriteChecker
	log       *logrus.Logger
}

func NewMovieUseCase(catalog domain.CatalogClient, favorites FavoriteChecker, logger *logrus.Logger) MovieUseCase {
	return &movieUseCase{
		catalog:   catalog,
		favorites: favorites,
		log:       logger,
	}
}

// Fetcher returns the page loader behind a listing name.
func (uc *movieUseCase) Fetcher(listing Listing) (domain.PageFetcher, error) {
	switch listing {
	case ListingPopular:
		return uc.catalog.PopularMovies, nil
	case ListingNowPlaying:
		return uc.catalog.NowPlayingMovies, nil
	case ListingTopRated:
		return uc.catalog.TopRatedMovies, nil
	default:
		return nil, domain.NewError(domain.ErrValidation, fmt.Sprintf("unknown listing '%s'", listing))
	}
}

func (uc *movieUseCase) Search(ctx context.Context, query string, page int) (*domain.MovieListResponse, error) {
	if strings.TrimSpace(query) == "" {
		return &domain.MovieListResponse{Page: 1, Results: []domain.Movie{}}, nil
	}
	return uc.catalog.SearchMovies(ctx, query, page)
}

func (uc *movieUseCase) Details(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	if movieID <= 0 {
		return nil, domain.NewError(domain.ErrValidation, "invalid movie ID")
	}
	return uc.catalog.MovieDetails(ctx, movieID)
}

func (uc *movieUseCase) Credits(ctx context.Context, movieID int) (*domain.MovieCredits, error) {
	if movieID <= 0 {
		return nil, domain.NewError(domain.ErrValidation, "invalid movie ID")
	}
	return uc.catalog.MovieCredits(ctx, movieID)
}

// DetailPage fetches details and credits concurrently. Either failure fails
// the page.
func (uc *movieUseCase) DetailPage(ctx context.Context, movieID int) (*MovieDetailPage, error) {
	if movieID <= 0 {
		return nil, domain.NewError(domain.ErrValidation, "invalid movie ID")
	}
	uc.log.Infof("Use Case: Loading detail page for movie %d", movieID)

	var (
		details *domain.MovieDetails
		credits *domain.MovieCredits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = uc.catalog.MovieDetails(gctx, movieID)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = uc.catalog.MovieCredits(gctx, movieID)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.log.Warnf("Use Case: Detail page for movie %d failed: %v", movieID, err)
		return nil, err
	}

	page := &MovieDetailPage{
		Details:  details,
		Credits:  credits,
		MainCast: MainCast(credits.Cast, MainCastSize),
		Director: firstWithJob(credits.Crew, "Director"),
		Runtime:  FormatRuntime(details.Runtime),
	}
	if uc.favorites != nil {
		page.IsFavorite = uc.favorites.Contains(ctx, movieID)
	}
	return page, nil
}

// MainCast returns the first n cast members as billed by the catalog.
func MainCast(cast []domain.CastMember, n int) []domain.CastMember {
	if len(cast) > n {
		cast = cast[:n]
	}
	return append([]domain.CastMember{}, cast...)
}

func firstWithJob(crew []domain.CrewMember, job string) *domain.CrewMember {
	for i := range crew {
		if crew[i].Job == job {
			c := crew[i]
			return &c
		}
	}
	return nil
}

// FormatRuntime renders minutes as "2h 15m", or "N/A" when unknown.
func FormatRuntime(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dh %dm", *minutes/60, *minutes%60)
}
