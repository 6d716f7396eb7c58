// Package auth gates the station finder behind email and password
// accounts. A successful login opens a session and returns its token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already registered")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*fueldb.User, error)
	UserByEmail(ctx context.Context, email string) (*fueldb.User, error)
}

type Service struct {
	users    UserStore
	sessions session.Store
	hasher   Hasher
	tokens   *TokenService
	validate *validator.Validate
	log      *slog.Logger
}

func NewService(users UserStore, sessions session.Store, hasher Hasher, tokens *TokenService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		log:      logger,
	}
}

// Signup creates an account and logs it in.
func (s *Service) Signup(ctx context.Context, req api.SignupRequest, lang string) (*api.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateSignup(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, fueldb.ErrEmailInUse) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.log.Info("user signed up", "user_id", u.ID)

	return s.start(ctx, u, lang)
}

// Login checks the credentials and opens a session in the loading
// state.
func (s *Service) Login(ctx context.Context, req api.LoginRequest, lang string) (*api.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, fueldb.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.start(ctx, u, lang)
}

// Logout ends a session. Unknown sessions are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error ending session: %w", err)
	}
	return nil
}

// Authenticate resolves a token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%w: session ended", ErrInvalidToken)
		}
		return nil, err
	}
	return sess, nil
}

func (s *Service) start(ctx context.Context, u *fueldb.User, lang string) (*api.AuthResponse, error) {
	sess := session.New(lang)
	if err := sess.Login(u.ID, u.Name); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	token, err := s.tokens.Generate(sess.ID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	return &api.AuthResponse{Token: token, Session: sess.Info()}, nil
}

// validateSignup reports the first failing field as a sentinel error.
func (s *Service) validateSignup(req api.SignupRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Name":
		return ErrNameRequired
	case "Email":
		return ErrInvalidEmail
	case "Password":
		return ErrPasswordTooShort
	default:
		return ErrPasswordMismatch
	}
}
