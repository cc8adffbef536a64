package repo

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
}

// WithTx runs fn against a transactional copy of the repo.
func (r *Repo) WithTx(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}
