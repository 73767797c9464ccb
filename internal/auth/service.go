package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
	"gigflow/utils"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// DefaultCost is the bcrypt cost used for new passwords.
const DefaultCost = 12

// UserStore is the subset of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Service registers and authenticates users.
type Service struct {
	users  UserStore
	tokens *TokenService
	cost   int
}

// NewService creates an auth Service. cost is the bcrypt cost; values below
// bcrypt.MinCost fall back to DefaultCost.
func NewService(users UserStore, tokens *TokenService, cost int) *Service {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return &Service{users: users, tokens: tokens, cost: cost}
}

// Session is a signed-in user and their token.
type Session struct {
	User  models.User
	Token string
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return Session{}, fmt.Errorf("service: %w - name, email and password are required", gigerrors.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, fmt.Errorf("service: %w - malformed email", gigerrors.ErrInvalidArgument)
	}
	if len(password) < MinPasswordLength {
		return Session{}, fmt.Errorf("service: %w - password must be at least %d characters", gigerrors.ErrInvalidArgument, MinPasswordLength)
	}
	// bcrypt only looks at the first 72 bytes
	if len(password) > 72 {
		return Session{}, fmt.Errorf("service: %w - password must be at most 72 bytes", gigerrors.ErrInvalidArgument)
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("service: hash password: %w", err)
	}

	user := models.User{
		ID:           utils.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return Session{}, fmt.Errorf("service: failed to register %s: %w", email, err)
	}

	return s.session(user)
}

// Login checks the credentials and signs the user in. Unknown emails and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("service: %w - email and password are required", gigerrors.ErrInvalidArgument)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gigerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("service: %w", gigerrors.ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("service: failed to load user %s: %w", email, err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return Session{}, fmt.Errorf("service: %w", gigerrors.ErrInvalidCredentials)
	}

	return s.session(user)
}

// Authenticate verifies token and loads the user it names. A valid token for
// a user that no longer exists is unauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gigerrors.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("service: %w - user no longer exists", gigerrors.ErrUnauthenticated)
		}
		return models.User{}, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}
	return user, nil
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("service: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(hash), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
