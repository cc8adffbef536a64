package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekrsw/knowledge/internal/blacklist"
	"github.com/ekrsw/knowledge/internal/hash"
	"github.com/ekrsw/knowledge/internal/logging"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/mykafka"
	"github.com/ekrsw/knowledge/internal/refresh"
	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/tokens"
)

// Authentication failures stay distinguishable here for logging; the
// transport layer collapses all of them into one generic 401 body.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRevokedToken       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("token subject not found")
)

type AuthService struct {
	Repo      *repo.Repo
	Issuer    *tokens.Issuer
	Refresh   *refresh.Store
	Blacklist *blacklist.Store
	Producer  *mykafka.Producer
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (s *AuthService) Register(ctx context.Context, username, password, fullName string, isAdmin bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		FullName:     fullName,
		IsAdmin:      isAdmin,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			l.Warn("register failed", "reason", "duplicate username")
			return nil, err
		}
		l.Error("register failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user, nil
}

// Login verifies credentials and hands out a fresh access/refresh pair.
// Unknown user and wrong password are deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login failed", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login ok")
	return pair, nil
}

// RotateRefresh exchanges a refresh token for a new access/refresh pair.
// The old refresh token is single-use: consume, delete and reissue run
// in one transaction.
func (s *AuthService) RotateRefresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	var userID uint
	var newRefresh string
	err := s.Refresh.WithTx(ctx, func(tx *refresh.Store) error {
		id, err := tx.Consume(ctx, refreshToken)
		if err != nil {
			return err
		}
		if _, err := tx.Revoke(ctx, refreshToken); err != nil {
			return err
		}
		token, err := tx.Issue(ctx, id)
		if err != nil {
			return err
		}
		userID = id
		newRefresh = token
		return nil
	})
	if err != nil {
		if errors.Is(err, refresh.ErrInvalidRefreshToken) {
			l.Warn("refresh failed", "reason", "invalid refresh token")
			return nil, ErrInvalidToken
		}
		l.Error("refresh failed", "error", err)
		return nil, err
	}

	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh failed", "reason", "user gone", "user_id", userID)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	access, _, err := s.Issuer.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	l.Info("refresh ok", "user_id", user.ID)
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh, TokenType: "bearer"}, nil
}

// Logout revokes both tokens best-effort: a failure on one side does
// not block the other.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	var firstErr error
	if claims, err := s.Issuer.Decode(accessToken); err == nil {
		if err := s.Blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			l.Error("access token revoke failed", "error", err)
			firstErr = err
		}
	}

	if refreshToken != "" {
		if _, err := s.Refresh.Revoke(ctx, refreshToken); err != nil {
			l.Error("refresh token revoke failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Resolve is the single gate every protected request passes through:
// decode, then blacklist, then subject lookup.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.Issuer.Decode(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.Blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	user, err := s.Repo.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, _, err := s.Issuer.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: "bearer"}, nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
