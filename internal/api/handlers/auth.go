package handlers

import (
	"errors"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles staff sign-in and account creation
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Staff login
// @Description Authenticate a staff member and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.SuccessResponse{data=models.LoginResponse} "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request format"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, repository.ErrInvalidCredentials) {
		log.Printf("Failed login for %s", req.Username)
		fail(c, http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials", Code: CodeUnauthorized})
		return
	}
	if err != nil {
		handleError(c, err, "log in")
		return
	}

	respond(c, http.StatusOK, resp)
}

// Me godoc
// @Summary Current staff member
// @Description Returns the account behind the access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=models.User}
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := auth.GetUserFromContext(c)
	if user == nil {
		fail(c, http.StatusUnauthorized, models.ErrorResponse{Error: "authentication required", Code: CodeUnauthorized})
		return
	}
	respond(c, http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create a staff account
// @Description Creates a staff account with the given role. Admin only.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "Account to create"
// @Success 201 {object} models.SuccessResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 409 {object} models.ErrorResponse "Username taken"
// @Router /auth/users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req.Username, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		fail(c, http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Field: "username", Code: booking.CodeValidation})
		return
	case errors.Is(err, auth.ErrWeakPassword):
		fail(c, http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Field: "password", Code: booking.CodeValidation})
		return
	case errors.Is(err, repository.ErrUserExists):
		fail(c, http.StatusConflict, models.ErrorResponse{Error: "username already taken", Field: "username", Code: booking.CodeConflict})
		return
	case err != nil:
		handleError(c, err, "create user")
		return
	}

	respond(c, http.StatusCreated, user)
}
