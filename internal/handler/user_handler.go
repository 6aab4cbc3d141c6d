package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rahul4019/Tshirt-store-API/internal/auth"
	"github.com/rahul4019/Tshirt-store-API/internal/errors"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/service"
)

// UserHandler handles profile and administrative user endpoints.
type UserHandler struct {
	svc service.UserService
	jwt *auth.JWTService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService, jwt *auth.JWTService) *UserHandler {
	return &UserHandler{svc: svc, jwt: jwt}
}

// ChangePasswordRequest represents a password change for the caller.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// AdminUpdateUserRequest represents an administrative user update.
type AdminUpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role"`
}

// UserResponse is the success envelope carrying a single user.
type UserResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

// UsersResponse is the success envelope carrying a list of users.
type UsersResponse struct {
	Success bool         `json:"success"`
	Users   []model.User `json:"users"`
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	claims := auth.CurrentClaims(c)
	if claims == nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}
	return claims.UserID, nil
}

func pathUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.NewHTTPError(http.StatusBadRequest, "invalid user id", "VALIDATION_ERROR")
	}
	return id, nil
}

// Me godoc
// @Summary Get the logged-in user's details
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /userdashboard [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// ChangePassword godoc
// @Summary Change the logged-in user's password
// @Tags users
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /password/update [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR")
	}
	if err := c.Validate(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "old and new password are required", "VALIDATION_ERROR")
	}

	user, err := h.svc.ChangePassword(c.Request().Context(), id, req.OldPassword, req.Password)
	if err != nil {
		return err
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return err
	}
	h.jwt.SetTokenCookie(c, token)
	return c.JSON(http.StatusOK, SessionResponse{Success: true, Token: token, User: user})
}

// UpdateProfile godoc
// @Summary Update the logged-in user's name, email and photo
// @Tags users
// @Accept mpfd
// @Produce json
// @Param name formData string false "Name"
// @Param email formData string false "Email"
// @Param photo formData file false "Replacement photo"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /userdashboard/update [post]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return err
	}

	var photo io.Reader
	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return errors.NewHTTPError(http.StatusBadRequest, "photo could not be read", "VALIDATION_ERROR")
		}
		defer file.Close()
		photo = file
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), id, c.FormValue("name"), c.FormValue("email"), photo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// AdminListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) AdminListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UsersResponse{Success: true, Users: users})
}

// ManagerListUsers godoc
// @Summary List users with the plain user role
// @Tags manager
// @Produce json
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /manager/users [get]
func (h *UserHandler) ManagerListUsers(c echo.Context) error {
	users, err := h.svc.ListUsersByRole(c.Request().Context(), model.RoleUser)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UsersResponse{Success: true, Users: users})
}

// AdminGetUser godoc
// @Summary Get a single user by id
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/user/{id} [get]
func (h *UserHandler) AdminGetUser(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// AdminUpdateUser godoc
// @Summary Update a user's name, email and role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body AdminUpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/user/{id} [put]
func (h *UserHandler) AdminUpdateUser(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return err
	}

	var req AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR")
	}
	if err := c.Validate(&req); err != nil {
		return errors.NewHTTPError(http.StatusBadRequest, "invalid email", "VALIDATION_ERROR")
	}

	user, err := h.svc.AdminUpdateUser(c.Request().Context(), id, req.Name, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// AdminDeleteUser godoc
// @Summary Delete a user and their hosted photo
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/user/{id} [delete]
func (h *UserHandler) AdminDeleteUser(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return err
	}
	if err := h.svc.AdminDeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "user deleted"})
}
