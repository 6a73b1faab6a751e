package delivery

import (
	"context"
	"net/http"
	"strings"

	"movie_explorer/internal/clients"
	"movie_explorer/internal/domain"
	"movie_explorer/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	movies    usecase.MovieUseCase
	favorites usecase.FavoriteChecker
	images    clients.Images
	log       *logrus.Logger
}

func NewCatalogHandler(movies usecase.MovieUseCase, favorites usecase.FavoriteChecker, images clients.Images, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		movies:    movies,
		favorites: favorites,
		images:    images,
		log:       logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	movies := router.Group("/movies")
	{
		movies.GET("/popular", h.listing(usecase.ListingPopular))
		movies.GET("/now-playing", h.listing(usecase.ListingNowPlaying))
		movies.GET("/top-rated", h.listing(usecase.ListingTopRated))
		movies.GET("/:id", h.GetMovie)
		movies.GET("/:id/credits", h.GetCredits)
	}
	router.GET("/search", h.Search)
}

type castView struct {
	domain.CastMember
	ProfileURL string `json:"profile_url"`
}

type movieView struct {
	*usecase.MovieDetailPage
	PosterURL   string     `json:"poster_url"`
	BackdropURL string     `json:"backdrop_url"`
	Cast        []castView `json:"cast"`
}

func (h *CatalogHandler) listing(listing usecase.Listing) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := pageQuery(c)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "Invalid page parameter")
			return
		}
		fetch, err := h.movies.Fetcher(listing)
		if err != nil {
			ErrorResponse(c, mapErrorToStatus(err), err.Error())
			return
		}

		state, err := usecase.FetchPage(c.Request.Context(), fetch, page, h.favorites, h.log)
		if err != nil {
			h.log.Warnf("Failed to load %s page %d: %v", listing, page, err)
			ErrorResponse(c, mapErrorToStatus(err), err.Error())
			return
		}
		SuccessResponse(c, http.StatusOK, "Movies retrieved successfully", state)
	}
}

func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	page, ok := pageQuery(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid page parameter")
		return
	}
	if strings.TrimSpace(query) == "" {
		SuccessResponse(c, http.StatusOK, "Empty query", usecase.ListState{Items: []usecase.MovieItem{}})
		return
	}

	fetch := func(ctx context.Context, page int) (*domain.MovieListResponse, error) {
		return h.movies.Search(ctx, query, page)
	}
	state, err := usecase.FetchPage(c.Request.Context(), fetch, page, h.favorites, h.log)
	if err != nil {
		h.log.Warnf("Search for %q page %d failed: %v", query, page, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Search results retrieved successfully", state)
}

func (h *CatalogHandler) GetMovie(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		h.log.Warnf("Invalid movie ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid movie ID format")
		return
	}

	page, err := h.movies.DetailPage(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to load movie %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	view := movieView{
		MovieDetailPage: page,
		PosterURL:       h.images.ImageURL(clients.Deref(page.Details.PosterPath), clients.PosterW500),
		BackdropURL:     h.images.BackdropURL(clients.Deref(page.Details.BackdropPath), clients.BackdropOriginal),
		Cast:            make([]castView, 0, len(page.MainCast)),
	}
	for _, member := range page.MainCast {
		view.Cast = append(view.Cast, castView{
			CastMember: member,
			ProfileURL: h.images.ImageURL(clients.Deref(member.ProfilePath), clients.PosterW200),
		})
	}
	SuccessResponse(c, http.StatusOK, "Movie retrieved successfully", view)
}

func (h *CatalogHandler) GetCredits(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid movie ID format")
		return
	}
	credits, err := h.movies.Credits(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to load credits for movie %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Credits retrieved successfully", credits)
}
