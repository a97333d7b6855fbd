package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/messagely/apiserver/internal/apperr"
	"github.com/messagely/apiserver/internal/logger"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	All(ctx context.Context) ([]types.UserSummary, error)
	UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error)
	MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error)
}

// UserService encapsulates credential and profile use-cases.
type UserService struct {
	repo       UserRepository
	bcryptCost int
}

// NewUserService constructs a UserService. bcryptCost is the work
// factor applied when hashing new passwords.
func NewUserService(repo UserRepository, bcryptCost int) *UserService {
	return &UserService{repo: repo, bcryptCost: bcryptCost}
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register hashes the password and creates the account. The stored
// credential is the bcrypt hash; the plaintext is discarded here.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return types.User{}, apperr.InvalidInput("username and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     in.Username,
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return types.User{}, apperr.Wrap(apperr.KindConflict, "username already taken", err)
		}
		return types.User{}, err
	}

	logger.FromContext(ctx).Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate reports whether the supplied credentials are valid. An
// unknown username yields (false, nil), indistinguishable from a wrong
// password, so the operation cannot be used to probe which usernames
// exist. Only missing input is an error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return false, apperr.InvalidInput("username and password are required")
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// UpdateLoginTimestamp stamps last_login_at to now.
func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	loginAt, err := s.repo.UpdateLoginTimestamp(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return time.Time{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return time.Time{}, err
	}
	return loginAt, nil
}

// Get returns the full profile for username.
func (s *UserService) Get(ctx context.Context, username string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return types.User{}, err
	}
	return user, nil
}

// All returns the basic profile of every user.
func (s *UserService) All(ctx context.Context) ([]types.UserSummary, error) {
	return s.repo.All(ctx)
}

// MessagesFrom returns the outbox of username.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error) {
	return s.repo.MessagesFrom(ctx, username)
}

// MessagesTo returns the inbox of username.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error) {
	return s.repo.MessagesTo(ctx, username)
}
