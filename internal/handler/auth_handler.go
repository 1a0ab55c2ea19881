package handler

import (
	"errors"
	"net/http"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and password HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest carries just an email address
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register an account
// @Description Create an unverified account and send a verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} domain.User
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Login(req.Email, req.Password, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// VerifyEmail godoc
// @Summary Verify email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} domain.User
// @Failure 400 {object} ProblemDetails
// @Router /auth/verify [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "token", Message: "Token is required"},
		})
	}

	user, err := h.authService.VerifyEmail(token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Description Always succeeds so the response does not reveal registered addresses
// @Tags auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 202 {object} MessageResponse
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := h.authService.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, MessageResponse{Message: "If the address is registered and unverified, a new link has been sent"})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Always succeeds so the response does not reveal registered addresses
// @Tags auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 202 {object} MessageResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email, c.RealIP()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, MessageResponse{Message: "If the address is registered, a reset link has been sent"})
}

// ResetPassword godoc
// @Summary Reset a password with a mailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := h.authService.ResetPassword(req.Token, req.Password, c.RealIP()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// ChangePassword godoc
// @Summary Change the signed-in user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Change request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword, c.RealIP())
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currentPassword", Message: "Current password is incorrect"},
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password changed"})
}

// Me godoc
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Failure 401 {object} ProblemDetails
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
