package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Catalog   *CatalogHandler
	Favorites *FavoritesHandler
	Auth      *AuthHandler
}

// NewRouter mounts every route behind request logging and the client scope.
func NewRouter(h Handlers, clientStore sessions.Store, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		SuccessResponse(c, http.StatusOK, "OK", nil)
	})

	scoped := router.Group("")
	scoped.Use(ClientScope(clientStore, logger))
	h.Catalog.RegisterRoutes(scoped)
	h.Favorites.RegisterRoutes(scoped)
	h.Auth.RegisterRoutes(scoped)
	return router
}
