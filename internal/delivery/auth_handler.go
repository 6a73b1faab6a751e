package delivery

import (
	"net/http"

	"movie_explorer/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
		auth.PATCH("/profile", h.UpdateProfile)
	}
}

// Field rules and their messages live in the auth use case.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for register: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Registration failed for %s: %v", req.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	user, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Login failed for %s: %v", req.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.useCase.Logout(c.Request.Context())
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := h.useCase.GetCurrentUser(c.Request.Context())
	if user == nil {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	SuccessResponse(c, http.StatusOK, "Current user retrieved", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Warnf("Failed to bind JSON for profile update: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	user, err := h.useCase.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		h.log.Warnf("Profile update failed: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", user)
}
