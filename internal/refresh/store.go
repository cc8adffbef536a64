package refresh

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/models"
)

var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

const tokenBytes = 32

// Store persists opaque refresh tokens bound to a user. Consume is
// read-only; rotation (delete old + issue new) is composed by the
// auth service so single-use semantics stay explicit.
type Store struct {
	DB  *gorm.DB
	TTL time.Duration
}

// WithTx runs fn against a transactional copy of the store, so the
// auth gate can rotate (consume + revoke + issue) atomically.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx, TTL: s.TTL})
	})
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Store) Issue(ctx context.Context, userID uint) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.TTL),
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves a token to its user id without invalidating it.
// Expired rows are deleted on sight.
func (s *Store) Consume(ctx context.Context, token string) (uint, error) {
	var row models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidRefreshToken
		}
		return 0, err
	}
	if time.Now().After(row.ExpiresAt) {
		if err := s.DB.WithContext(ctx).Delete(&row).Error; err != nil {
			return 0, err
		}
		return 0, ErrInvalidRefreshToken
	}
	return row.UserID, nil
}

// Revoke deletes unconditionally and reports whether a row existed.
func (s *Store) Revoke(ctx context.Context, token string) (bool, error) {
	result := s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
