package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/models"
)

var (
	ErrKnowledgeNotFound = errors.New("knowledge not found")
	ErrStatusConflict    = errors.New("knowledge status changed concurrently")
)

// KnowledgeFilter narrows ListKnowledge; zero values mean "no filter".
type KnowledgeFilter struct {
	Status        models.Status
	UserID        uint
	ArticleNumber string
	Skip          int
	Limit         int
}

func (r *Repo) GetKnowledge(ctx context.Context, id uint) (*models.Knowledge, error) {
	var item models.Knowledge
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Approver").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKnowledgeNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *Repo) ListKnowledge(ctx context.Context, f KnowledgeFilter) ([]models.Knowledge, error) {
	q := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Approver").
		Order("created_at DESC")

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		q = q.Where("created_by = ?", f.UserID)
	}
	if f.ArticleNumber != "" {
		q = q.Where("article_number = ?", f.ArticleNumber)
	}

	var items []models.Knowledge
	err := q.Offset(f.Skip).Limit(f.Limit).Find(&items).Error
	return items, err
}

func (r *Repo) CreateKnowledge(ctx context.Context, item *models.Knowledge) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

// UpdateKnowledgeFields writes only the given content columns. Status
// and the derived audit columns never pass through here; they move
// exclusively via UpdateKnowledgeStatus.
func (r *Repo) UpdateKnowledgeFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.DB.WithContext(ctx).Model(&models.Knowledge{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKnowledgeNotFound
	}
	return nil
}

// UpdateKnowledgeStatus writes the status and derived audit fields of
// item, guarded by the status the caller read. Zero rows affected means
// another request changed the status in between.
func (r *Repo) UpdateKnowledgeStatus(ctx context.Context, item *models.Knowledge, prev models.Status) error {
	result := r.DB.WithContext(ctx).Model(&models.Knowledge{}).
		Where("id = ? AND status = ?", item.ID, prev).
		Updates(map[string]any{
			"status":       item.Status,
			"submitted_at": item.SubmittedAt,
			"approved_at":  item.ApprovedAt,
			"approved_by":  item.ApprovedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// DeleteKnowledgeOwned deletes only when ownerID created the item,
// mirroring the owner-only delete rule.
func (r *Repo) DeleteKnowledgeOwned(ctx context.Context, id, ownerID uint) (bool, error) {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		Delete(&models.Knowledge{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
