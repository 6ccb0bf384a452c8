package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

type LoginResult struct {
	Token     string      `json:"token"`
	Email     string      `json:"email"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

type SeedUserInput struct {
	Email      string
	Password   string
	Name       string
	Role       string
	Department string
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	if s.lockouts != nil {
		state, err := s.lockouts.Get(ctx, email)
		if err == nil && state.LockedUntil != nil && state.LockedUntil.After(now) {
			return LoginResult{}, domain.ErrAccountLocked
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.recordLoginFailure(ctx, email, now)
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.recordLoginFailure(ctx, email, now)
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if s.lockouts != nil {
		_ = s.lockouts.Reset(ctx, email)
	}

	expiresAt := now.Add(s.cfg.TokenTTL)
	token, err := s.tokens.Sign(ports.AuthClaims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{Token: token, Email: user.Email, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) ValidateToken(_ context.Context, raw string) (ports.AuthClaims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return ports.AuthClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *Service) CurrentUser(ctx context.Context, actor Actor) (domain.User, error) {
	if actor.UserID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	return s.users.GetByID(ctx, actor.UserID)
}

// SeedUser creates the user unless one with the same email already exists.
func (s *Service) SeedUser(ctx context.Context, in SeedUserInput) (bool, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return false, fmt.Errorf("%w: seed user needs email and password", domain.ErrInvalidInput)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = domain.RoleMember
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Department:   strings.TrimSpace(in.Department),
		PasswordHash: hash,
		CreatedAt:    s.nowFn(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, email string, now time.Time) {
	if s.lockouts == nil {
		return
	}
	if _, err := s.lockouts.RecordFailure(ctx, email, now, s.cfg.LockoutThreshold, s.cfg.LockoutWindow); err != nil {
		appLogger().WarnContext(ctx, "record login failure",
			"operation", "login",
			"outcome", "failure",
			"error", err,
		)
	}
}
