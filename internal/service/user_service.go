package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahul4019/Tshirt-store-API/internal/cache"
	"github.com/rahul4019/Tshirt-store-API/internal/errors"
	"github.com/rahul4019/Tshirt-store-API/internal/imagehost"
	"github.com/rahul4019/Tshirt-store-API/internal/mail"
	"github.com/rahul4019/Tshirt-store-API/internal/model"
	"github.com/rahul4019/Tshirt-store-API/internal/repository"
)

const userCacheTTL = 5 * time.Minute

const (
	resetMailSubject = "Tshirt store - Password reset email"
	resetMailBody    = "Copy paste this link in your URL and hit enter\n\n%s"
)

// UserService orchestrates the credential store, image host and mail
// sender for account operations.
type UserService interface {
	Signup(ctx context.Context, name, email, password string, photo io.Reader) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	ForgotPassword(ctx context.Context, email, resetBaseURL string) error
	ResetPassword(ctx context.Context, rawToken, password, confirm string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, photo io.Reader) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]model.User, error)
	AdminUpdateUser(ctx context.Context, id uuid.UUID, name, email, role string) (*model.User, error)
	AdminDeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo   repository.UserRepository
	images imagehost.Uploader
	mailer mail.Mailer
	cache  *cache.Client
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, images imagehost.Uploader, mailer mail.Mailer, cache *cache.Client) UserService {
	return &userService{repo: repo, images: images, mailer: mailer, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

// Signup uploads the photo, then creates the user. The upload is not
// rolled back if the create fails; the orphaned image is accepted.
func (s *userService) Signup(ctx context.Context, name, email, password string, photo io.Reader) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	uploaded, err := s.images.Upload(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	user := &model.User{
		Name:  name,
		Email: email,
		Role:  model.RoleUser,
		Photo: model.Photo{ID: uploaded.ID, URL: uploaded.URL},
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and returns the matching user.
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrNotRegistered
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword persists a hashed reset token on the user and mails the
// raw secret. If the mail cannot be delivered the token and expiry are
// cleared again so a later attempt starts fresh.
func (s *userService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw, err := user.NewResetToken(time.Now())
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	s.invalidate(ctx, user.ID)

	resetURL := fmt.Sprintf("%s/api/v1/password/reset/%s", strings.TrimRight(resetBaseURL, "/"), raw)
	if err := s.mailer.Send(user.Email, resetMailSubject, fmt.Sprintf(resetMailBody, resetURL)); err != nil {
		user.ClearResetToken()
		if saveErr := s.repo.Update(ctx, user); saveErr != nil {
			return fmt.Errorf("clear reset token after failed send: %w", saveErr)
		}
		s.invalidate(ctx, user.ID)
		return fmt.Errorf("%w: %v", errors.ErrMailDelivery, err)
	}
	return nil
}

// ResetPassword redeems a raw reset token and sets the new password.
func (s *userService) ResetPassword(ctx context.Context, rawToken, password, confirm string) (*model.User, error) {
	user, err := s.repo.FindByResetToken(ctx, model.HashResetToken(rawToken), time.Now())
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}

	if password != confirm {
		return nil, errors.ErrPasswordMismatch
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	user.ClearResetToken()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save new password: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// GetUser returns a user by id, serving repeated reads from cache.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// ChangePassword verifies the old password before storing the new one.
func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.CheckPassword(oldPassword) {
		return nil, errors.ErrWrongOldPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save new password: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// UpdateProfile updates name and email, and when a new photo is supplied
// replaces the hosted image: the old handle is destroyed, then the new
// file uploaded. The two steps are not atomic.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, photo io.Reader) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if photo != nil {
		if user.Photo.ID != "" {
			if err := s.images.Destroy(ctx, user.Photo.ID); err != nil {
				return nil, fmt.Errorf("destroy old photo: %w", err)
			}
		}
		uploaded, err := s.images.Upload(ctx, photo)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
		user.Photo = model.Photo{ID: uploaded.ID, URL: uploaded.URL}
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	return s.repo.ListByRole(ctx, role)
}

// AdminUpdateUser applies name, email and role. Empty fields are left
// untouched.
func (s *userService) AdminUpdateUser(ctx context.Context, id uuid.UUID, name, email, role string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if role != "" {
		if !model.ValidRole(role) {
			return nil, errors.ErrInvalidRole
		}
		user.Role = role
	}
	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return user, nil
}

// AdminDeleteUser removes the hosted photo (best effort) and then the
// record. A missing user never reaches the image host.
func (s *userService) AdminDeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.Photo.ID != "" {
		// Best effort, errors ignored.
		_ = s.images.Destroy(ctx, user.Photo.ID)
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx, user.ID)
	return nil
}
