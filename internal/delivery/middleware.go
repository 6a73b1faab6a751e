package delivery

import (
	"net/http"
	"time"

	"movie_explorer/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	ClientCookieName = "movie-explorer-client"
	clientIDValue    = "client_id"
	clientScopeKey   = "clientScope"
)

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Request received")

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(startTime).Milliseconds(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// NewClientStore builds the cookie store that carries each browser's client id.
func NewClientStore(secret string, production bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// ClientScope assigns every browser a stable client id and scopes the
// request context's storage to it.
func ClientScope(store sessions.Store, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, ClientCookieName)
		if err != nil {
			// A cookie signed with another secret decodes as a fresh session.
			logger.Warnf("Middleware: Discarding unreadable client cookie: %v", err)
		}

		clientID, _ := session.Values[clientIDValue].(string)
		if clientID == "" {
			clientID = uuid.NewString()
			session.Values[clientIDValue] = clientID
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.Errorf("Middleware: Failed to save client cookie: %v", err)
				ErrorResponse(c, http.StatusInternalServerError, "Failed to establish client session")
				c.Abort()
				return
			}
			logger.Debugf("Middleware: Issued client id %s", clientID)
		}

		c.Set(clientScopeKey, clientID)
		c.Request = c.Request.WithContext(storage.WithScope(c.Request.Context(), clientID))
		c.Next()
	}
}
