package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rahul4019/Tshirt-store-API/internal/auth"
	"github.com/rahul4019/Tshirt-store-API/internal/config"
	apperrors "github.com/rahul4019/Tshirt-store-API/internal/errors"
	"github.com/rahul4019/Tshirt-store-API/internal/handler"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/router"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, name, email, password string, photo io.Reader) (*model.User, error) {
	args := m.Called(ctx, name, email, password, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	args := m.Called(ctx, email, resetBaseURL)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, rawToken, password, confirm string) (*model.User, error) {
	args := m.Called(ctx, rawToken, password, confirm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) (*model.User, error) {
	args := m.Called(ctx, id, oldPassword, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, photo io.Reader) (*model.User, error) {
	args := m.Called(ctx, id, name, email, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) AdminUpdateUser(ctx context.Context, id uuid.UUID, name, email, role string) (*model.User, error) {
	args := m.Called(ctx, id, name, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) AdminDeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestServer(svc *MockUserService) (*echo.Echo, *auth.JWTService) {
	cfg := &config.Config{JWTSecret: "test-secret", CookieTime: time.Hour}
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.CookieTime)

	e := echo.New()
	router.Register(e, cfg, handler.NewAuthHandler(svc, jwtService), handler.NewUserHandler(svc, jwtService))
	return e, jwtService
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	t.Run("missing fields is a validation error and creates nothing", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		body, contentType := multipartBody(t, map[string]string{"name": "Alice"}, "photo", "me.png")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
		svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing photo is a validation error", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		fields := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"}
		body, contentType := multipartBody(t, fields, "", "")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "photo is required")
		svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("successful signup attaches a session cookie", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		user := &model.User{
			ID:    uuid.New(),
			Name:  "Alice",
			Email: "alice@example.com",
			Role:  model.RoleUser,
			Photo: model.Photo{ID: "users/abc", URL: "https://img/abc"},
		}
		svc.On("Signup", mock.Anything, "Alice", "alice@example.com", "secret123", mock.Anything).Return(user, nil)

		fields := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123"}
		body, contentType := multipartBody(t, fields, "photo", "me.png")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Contains(t, rec.Body.String(), "users/abc")

		cookie := sessionCookie(t, rec)
		assert.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		svc.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"email":"alice@example.com"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)
		svc.On("Login", mock.Anything, "ghost@example.com", "secret123").Return(nil, apperrors.ErrNotRegistered)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"email":"ghost@example.com","password":"secret123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "AUTH_ERROR")
		assert.Nil(t, sessionCookie(t, rec))
	})

	t.Run("success never exposes the password hash", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		user := &model.User{ID: uuid.New(), Email: "alice@example.com", Role: model.RoleUser}
		assert.NoError(t, user.SetPassword("secret123"))
		svc.On("Login", mock.Anything, "alice@example.com", "secret123").Return(user, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), user.PasswordHash)
		assert.NotContains(t, rec.Body.String(), "password_hash")

		cookie := sessionCookie(t, rec)
		assert.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
	})
}

func TestLogout(t *testing.T) {
	svc := new(MockUserService)
	e, _ := newTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully logged out")

	cookie := sessionCookie(t, rec)
	assert.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestMe(t *testing.T) {
	t.Run("without a session cookie", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/userdashboard", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
		svc.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("with a valid session cookie", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)

		user := &model.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
		svc.On("GetUser", mock.Anything, user.ID).Return(user, nil)

		token, err := jwtService.GenerateToken(user.ID, user.Role)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/userdashboard", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alice@example.com")
		svc.AssertExpectations(t)
	})
}

func TestRoleGuards(t *testing.T) {
	t.Run("plain user cannot list all users", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)

		token, err := jwtService.GenerateToken(uuid.New(), model.RoleUser)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "ListUsers", mock.Anything)
	})

	t.Run("admin lists all users", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)
		svc.On("ListUsers", mock.Anything).Return([]model.User{{Email: "a@example.com"}, {Email: "b@example.com"}}, nil)

		token, err := jwtService.GenerateToken(uuid.New(), model.RoleAdmin)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "a@example.com")
	})

	t.Run("manager sees the users list but not admin routes", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)
		svc.On("ListUsersByRole", mock.Anything, model.RoleUser).Return([]model.User{{Email: "a@example.com"}}, nil)

		token, err := jwtService.GenerateToken(uuid.New(), model.RoleManager)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/manager/users", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAdminUserRoutes(t *testing.T) {
	t.Run("get with a missing id halts with not found", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)

		id := uuid.New()
		svc.On("GetUser", mock.Anything, id).Return(nil, apperrors.ErrUserNotFound)

		token, err := jwtService.GenerateToken(uuid.New(), model.RoleAdmin)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/user/"+id.String(), nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
		assert.NotContains(t, rec.Body.String(), `"user"`)
	})

	t.Run("delete of a missing user", func(t *testing.T) {
		svc := new(MockUserService)
		e, jwtService := newTestServer(svc)

		id := uuid.New()
		svc.On("AdminDeleteUser", mock.Anything, id).Return(apperrors.ErrUserNotFound)

		token, err := jwtService.GenerateToken(uuid.New(), model.RoleAdmin)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/user/"+id.String(), nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("delivery failure surfaces as a server error", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)
		svc.On("ForgotPassword", mock.Anything, "alice@example.com", mock.Anything).Return(apperrors.ErrMailDelivery)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/forgotpassword", strings.NewReader(`{"email":"alice@example.com"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "DELIVERY_ERROR")
	})

	t.Run("success returns a generic confirmation", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)
		svc.On("ForgotPassword", mock.Anything, "alice@example.com", mock.Anything).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/forgotpassword", strings.NewReader(`{"email":"alice@example.com"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email sent successfully")
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)
		svc.On("ResetPassword", mock.Anything, "rawsecret", "newpass", "newpass").Return(nil, apperrors.ErrResetTokenInvalid)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/password/reset/rawsecret",
			strings.NewReader(`{"password":"newpass","confirm_password":"newpass"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_ERROR")
	})

	t.Run("valid token issues a fresh session", func(t *testing.T) {
		svc := new(MockUserService)
		e, _ := newTestServer(svc)

		user := &model.User{ID: uuid.New(), Email: "alice@example.com", Role: model.RoleUser}
		svc.On("ResetPassword", mock.Anything, "rawsecret", "newpass", "newpass").Return(user, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/password/reset/rawsecret",
			strings.NewReader(`{"password":"newpass","confirm_password":"newpass"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, sessionCookie(t, rec))
	})
}
