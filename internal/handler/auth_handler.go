package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rahul4019/Tshirt-store-API/internal/auth"
	"github.com/rahul4019/Tshirt-store-API/internal/errors"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/service"
)

// AuthHandler handles signup, login, logout and the password reset flow.
type AuthHandler struct {
	svc service.UserService
	jwt *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc service.UserService, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: jwt}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents a forgot-password request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents a password reset confirmation.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// SessionResponse is the success envelope carrying a session token.
type SessionResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// MessageResponse is the success envelope carrying only a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// issueSession signs a token for the user, attaches it as a cookie and
// writes the session envelope.
func (h *AuthHandler) issueSession(c echo.Context, status int, user *model.User) error {
	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return err
	}
	h.jwt.SetTokenCookie(c, token)
	return c.JSON(status, SessionResponse{Success: true, Token: token, User: user})
}

// Signup godoc
// @Summary Register a new user with a profile photo
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param photo formData file true "Profile photo"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	password := c.FormValue("password")
	if name == "" || email == "" || password == "" {
		return errors.NewHTTPError(http.StatusBadRequest, "name, email and password are required", "VALIDATION_ERROR")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "photo is required for sign up", "VALIDATION_ERROR")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "photo could not be read", "VALIDATION_ERROR")
	}
	defer file.Close()

	user, err := h.svc.Signup(c.Request().Context(), name, email, password, file)
	if err != nil {
		return err
	}
	return h.issueSession(c, http.StatusCreated, user)
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR")
	}
	if err := c.Validate(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "please provide email and password", "VALIDATION_ERROR")
	}

	user, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.issueSession(c, http.StatusOK, user)
}

// Logout godoc
// @Summary Logout by expiring the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	auth.ClearTokenCookie(c)
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Successfully logged out"})
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Registered email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /forgotpassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR")
	}
	if err := c.Validate(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "please provide your email", "VALIDATION_ERROR")
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email, baseURL); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Email sent successfully"})
}

// ResetPassword godoc
// @Summary Reset the password with an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Raw reset token"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /password/reset/{token} [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR")
	}
	if err := c.Validate(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "password and confirm password are required", "VALIDATION_ERROR")
	}

	user, err := h.svc.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return h.issueSession(c, http.StatusOK, user)
}
