package delivery

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"movie_explorer/internal/domain"
	"movie_explorer/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"ID", "Title", "Release Date", "Rating", "Added At"}

type FavoritesHandler struct {
	useCase domain.FavoritesUseCase
	log     *logrus.Logger
	now     func() time.Time
}

func NewFavoritesHandler(uc domain.FavoritesUseCase, logger *logrus.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		useCase: uc,
		log:     logger,
		now:     time.Now,
	}
}

func (h *FavoritesHandler) RegisterRoutes(router gin.IRouter) {
	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("", h.ClearFavorites)
		favorites.POST("/toggle", h.ToggleFavorite)
		favorites.GET("/export.csv", h.ExportCSV)
		favorites.GET("/export.xlsx", h.ExportXLSX)
		favorites.GET("/:id", h.IsFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
	}
}

type favoriteRequest struct {
	ID          int     `json:"id" binding:"required,gt=0"`
	Title       string  `json:"title" binding:"required"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

func (r favoriteRequest) movie() domain.Movie {
	return domain.Movie{
		ID:          r.ID,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
	}
}

func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	order := usecase.ParseFavoriteSort(c.Query("sort"))
	favorites := h.useCase.Sorted(c.Request.Context(), order)
	SuccessResponse(c, http.StatusOK, "Favorites retrieved successfully", gin.H{
		"sort":      order,
		"count":     len(favorites),
		"favorites": favorites,
	})
}

func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for add favorite: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	h.useCase.Add(c.Request.Context(), req.movie())
	SuccessResponse(c, http.StatusOK, "Favorite saved", gin.H{"id": req.ID, "is_favorite": true})
}

func (h *FavoritesHandler) ToggleFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for toggle favorite: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	added := h.useCase.Toggle(c.Request.Context(), req.movie())
	message := "Favorite removed"
	if added {
		message = "Favorite added"
	}
	SuccessResponse(c, http.StatusOK, message, gin.H{"id": req.ID, "is_favorite": added})
}

func (h *FavoritesHandler) IsFavorite(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid movie ID format")
		return
	}
	SuccessResponse(c, http.StatusOK, "Favorite status retrieved", gin.H{
		"id":          id,
		"is_favorite": h.useCase.Contains(c.Request.Context(), id),
	})
}

func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	id, ok := movieIDParam(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid movie ID format")
		return
	}
	h.useCase.Remove(c.Request.Context(), id)
	SuccessResponse(c, http.StatusOK, "Favorite removed", gin.H{"id": id, "is_favorite": false})
}

func (h *FavoritesHandler) ClearFavorites(c *gin.Context) {
	h.useCase.ClearAll(c.Request.Context())
	SuccessResponse(c, http.StatusOK, "Favorites cleared", nil)
}

func exportRow(f domain.FavoriteMovie) []string {
	return []string{
		strconv.Itoa(f.ID),
		f.Title,
		f.ReleaseDate,
		strconv.FormatFloat(f.VoteAverage, 'f', 1, 64),
		f.AddedAt.Format(time.RFC3339),
	}
}

func (h *FavoritesHandler) ExportCSV(c *gin.Context) {
	order := usecase.ParseFavoriteSort(c.Query("sort"))
	favorites := h.useCase.Sorted(c.Request.Context(), order)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"favorites_%s.csv\"",
		h.now().Format("20060102")))

	// UTF-8 BOM for spreadsheet apps.
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, f := range favorites {
		_ = writer.Write(exportRow(f))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.Errorf("Failed to write favorites CSV: %v", err)
	}
}

func (h *FavoritesHandler) ExportXLSX(c *gin.Context) {
	order := usecase.ParseFavoriteSort(c.Query("sort"))
	favorites := h.useCase.Sorted(c.Request.Context(), order)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			h.log.Warnf("Failed to close workbook: %v", err)
		}
	}()

	sheetName := "Favorites"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		h.log.Errorf("Failed to create favorites sheet: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create worksheet")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	for idx, fav := range favorites {
		row := idx + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), fav.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), fav.Title)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), fav.ReleaseDate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), fav.VoteAverage)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), fav.AddedAt.Format(time.RFC3339))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 40)
	_ = f.SetColWidth(sheetName, "C", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "D", 10)
	_ = f.SetColWidth(sheetName, "E", "E", 24)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"favorites_%s.xlsx\"",
		h.now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		h.log.Errorf("Failed to write favorites workbook: %v", err)
	}
}
