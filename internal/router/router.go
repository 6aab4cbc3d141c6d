package router

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/rahul4019/Tshirt-store-API/internal/auth"
	"github.com/rahul4019/Tshirt-store-API/internal/config"
	apperrors "github.com/rahul4019/Tshirt-store-API/internal/errors"
	"github.com/rahul4019/Tshirt-store-API/internal/handler"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/logout", authHandler.Logout)
	api.POST("/forgotpassword", authHandler.ForgotPassword)
	api.POST("/password/reset/:token", authHandler.ResetPassword)

	// Routes requiring a session cookie
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "cookie:" + auth.CookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/userdashboard", userHandler.Me)
	secured.POST("/password/update", userHandler.ChangePassword)
	secured.POST("/userdashboard/update", userHandler.UpdateProfile)

	admin := secured.Group("", RequireRole(model.RoleAdmin))
	admin.GET("/admin/users", userHandler.AdminListUsers)
	admin.GET("/admin/user/:id", userHandler.AdminGetUser)
	admin.PUT("/admin/user/:id", userHandler.AdminUpdateUser)
	admin.DELETE("/admin/user/:id", userHandler.AdminDeleteUser)

	manager := secured.Group("", RequireRole(model.RoleAdmin, model.RoleManager))
	manager.GET("/manager/users", userHandler.ManagerListUsers)
}

// RequireRole allows the request through only when the session role is in
// the allowed set.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := auth.CurrentClaims(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you are not allowed for this resource")
		}
	}
}

// HTTPErrorHandler is the centralized responder: every error returned by
// a handler ends up here and is converted to the JSON error envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp apperrors.ErrorResponse
	status := http.StatusInternalServerError

	switch e := err.(type) {
	case *apperrors.HTTPError:
		status = e.StatusCode
		resp = e.ToErrorResponse()
	case *echo.HTTPError:
		status = e.Code
		resp = apperrors.ErrorResponse{
			Success: false,
			Error:   fmt.Sprintf("%v", e.Message),
			Code:    "REQUEST_ERROR",
		}
	default:
		mapped := apperrors.MapErrorToHTTP(err)
		status = mapped.StatusCode
		resp = mapped.ToErrorResponse()
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, resp)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
