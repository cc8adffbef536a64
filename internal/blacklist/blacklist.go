package blacklist

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ekrsw/knowledge/internal/models"
)

// Store records revoked access-token ids until their natural expiry.
// When Enabled is false every check reports "not revoked" and Revoke is
// a no-op, so environments without persistence overhead keep working.
type Store struct {
	DB      *gorm.DB
	Enabled bool
}

func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !s.Enabled {
		return nil
	}
	entry := models.BlacklistedToken{
		JTI:       jti,
		ExpiresAt: expiresAt,
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled {
		return false, nil
	}
	var entry models.BlacklistedToken
	err := s.DB.WithContext(ctx).Where("jti = ?", jti).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeExpired drops entries whose token has expired on its own; they
// can no longer pass the decode step anyway.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if !s.Enabled {
		return 0, nil
	}
	result := s.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.BlacklistedToken{})
	return result.RowsAffected, result.Error
}
