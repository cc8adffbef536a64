package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekrsw/knowledge/internal/logging"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/mykafka"
	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/workflow"
)

// ErrForbidden covers "the record exists but you may not act on it this
// way" — distinct from not-found so callers can tell the two apart.
var ErrForbidden = errors.New("operation not permitted")

type KnowledgeService struct {
	Repo     *repo.Repo
	Producer *mykafka.Producer
}

type KnowledgeCreate struct {
	ArticleNumber    string            `json:"article_number"`
	ChangeType       models.ChangeType `json:"change_type"`
	Title            string            `json:"title"`
	InfoCategory     string            `json:"info_category"`
	Keywords         string            `json:"keywords"`
	Importance       bool              `json:"importance"`
	Target           string            `json:"target"`
	OpenPublishStart *time.Time        `json:"open_publish_start"`
	OpenPublishEnd   *time.Time        `json:"open_publish_end"`
	Question         string            `json:"question"`
	Answer           string            `json:"answer"`
	AddComments      string            `json:"add_comments"`
	Remarks          string            `json:"remarks"`
}

// KnowledgePatch applies only the fields that were provided. Status,
// owner and the derived audit fields are not patchable; status moves
// only through UpdateStatus.
type KnowledgePatch struct {
	Title            *string    `json:"title"`
	InfoCategory     *string    `json:"info_category"`
	Keywords         *string    `json:"keywords"`
	Importance       *bool      `json:"importance"`
	Target           *string    `json:"target"`
	OpenPublishStart *time.Time `json:"open_publish_start"`
	OpenPublishEnd   *time.Time `json:"open_publish_end"`
	Question         *string    `json:"question"`
	Answer           *string    `json:"answer"`
	AddComments      *string    `json:"add_comments"`
	Remarks          *string    `json:"remarks"`
}

var ErrInvalidChangeType = errors.New("invalid change type")

func (s *KnowledgeService) Create(ctx context.Context, in KnowledgeCreate, owner *models.User) (*models.Knowledge, error) {
	l := logging.FromContext(ctx).With("svc", "knowledge.create", "user_id", owner.ID)

	if !in.ChangeType.Valid() {
		return nil, ErrInvalidChangeType
	}
	if _, err := s.Repo.GetArticleByNumber(ctx, in.ArticleNumber); err != nil {
		return nil, err
	}

	item := &models.Knowledge{
		ArticleNumber:    in.ArticleNumber,
		ChangeType:       in.ChangeType,
		Title:            in.Title,
		InfoCategory:     in.InfoCategory,
		Keywords:         in.Keywords,
		Importance:       in.Importance,
		Target:           in.Target,
		OpenPublishStart: in.OpenPublishStart,
		OpenPublishEnd:   in.OpenPublishEnd,
		Question:         in.Question,
		Answer:           in.Answer,
		AddComments:      in.AddComments,
		Remarks:          in.Remarks,
		Status:           models.StatusDraft,
		CreatedBy:        owner.ID,
	}
	if err := s.Repo.CreateKnowledge(ctx, item); err != nil {
		l.Error("create failed", "error", err)
		return nil, err
	}

	s.publish(ctx, item.ID, map[string]any{
		"type":           "knowledge_created",
		"knowledge_id":   item.ID,
		"article_number": item.ArticleNumber,
		"user_id":        owner.ID,
	})

	return s.Repo.GetKnowledge(ctx, item.ID)
}

func (s *KnowledgeService) Get(ctx context.Context, id uint) (*models.Knowledge, error) {
	return s.Repo.GetKnowledge(ctx, id)
}

func (s *KnowledgeService) List(ctx context.Context, f repo.KnowledgeFilter) ([]models.Knowledge, error) {
	return s.Repo.ListKnowledge(ctx, f)
}

// Update patches content fields. Allowed for the owner and for admins.
// Only the provided columns are written, so a concurrent status change
// can never be reverted by a content edit.
func (s *KnowledgeService) Update(ctx context.Context, id uint, patch KnowledgePatch, actor *models.User) (*models.Knowledge, error) {
	err := s.Repo.WithTx(ctx, func(tx *repo.Repo) error {
		item, err := tx.GetKnowledge(ctx, id)
		if err != nil {
			return err
		}
		if item.CreatedBy != actor.ID && !actor.IsAdmin {
			return ErrForbidden
		}
		return tx.UpdateKnowledgeFields(ctx, id, patchColumns(patch))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, id, map[string]any{
		"type":         "knowledge_updated",
		"knowledge_id": id,
		"user_id":      actor.ID,
	})

	return s.Repo.GetKnowledge(ctx, id)
}

// UpdateStatus runs the status machine inside one transaction with an
// optimistic guard on the status the actor saw.
func (s *KnowledgeService) UpdateStatus(ctx context.Context, id uint, newStatus models.Status, actor *models.User) (*models.Knowledge, error) {
	l := logging.FromContext(ctx).With("svc", "knowledge.status", "knowledge_id", id, "user_id", actor.ID)

	err := s.Repo.WithTx(ctx, func(tx *repo.Repo) error {
		item, err := tx.GetKnowledge(ctx, id)
		if err != nil {
			return err
		}
		next, err := workflow.Apply(*item, newStatus, actor, time.Now().UTC())
		if err != nil {
			return err
		}
		return tx.UpdateKnowledgeStatus(ctx, &next, item.Status)
	})
	if err != nil {
		if errors.Is(err, workflow.ErrTransitionForbidden) {
			l.Warn("transition rejected", "new_status", newStatus)
		}
		return nil, err
	}

	s.publish(ctx, id, map[string]any{
		"type":         "knowledge_status_changed",
		"knowledge_id": id,
		"new_status":   newStatus,
		"user_id":      actor.ID,
	})

	l.Info("status updated", "new_status", newStatus)
	return s.Repo.GetKnowledge(ctx, id)
}

// Delete is owner-only. Admins are rejected as well: the current policy
// grants delete exclusively to the creator (see the policy test before
// relying on this).
func (s *KnowledgeService) Delete(ctx context.Context, id uint, actor *models.User) error {
	item, err := s.Repo.GetKnowledge(ctx, id)
	if err != nil {
		return err
	}
	if item.CreatedBy != actor.ID {
		return ErrForbidden
	}

	deleted, err := s.Repo.DeleteKnowledgeOwned(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return repo.ErrKnowledgeNotFound
	}

	s.publish(ctx, id, map[string]any{
		"type":         "knowledge_deleted",
		"knowledge_id": id,
		"user_id":      actor.ID,
	})
	return nil
}

// patchColumns maps provided patch fields to their columns. Status,
// owner and the derived audit columns are deliberately absent here.
func patchColumns(p KnowledgePatch) map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.InfoCategory != nil {
		cols["info_category"] = *p.InfoCategory
	}
	if p.Keywords != nil {
		cols["keywords"] = *p.Keywords
	}
	if p.Importance != nil {
		cols["importance"] = *p.Importance
	}
	if p.Target != nil {
		cols["target"] = *p.Target
	}
	if p.OpenPublishStart != nil {
		cols["open_publish_start"] = *p.OpenPublishStart
	}
	if p.OpenPublishEnd != nil {
		cols["open_publish_end"] = *p.OpenPublishEnd
	}
	if p.Question != nil {
		cols["question"] = *p.Question
	}
	if p.Answer != nil {
		cols["answer"] = *p.Answer
	}
	if p.AddComments != nil {
		cols["add_comments"] = *p.AddComments
	}
	if p.Remarks != nil {
		cols["remarks"] = *p.Remarks
	}
	return cols
}

func (s *KnowledgeService) publish(ctx context.Context, id uint, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, "knowledge_events", fmt.Sprint(id), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", "knowledge_events", "error", err)
	}
}
