package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/models"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrDuplicateArticle = errors.New("article number already exists")
)

func (r *Repo) GetArticleByNumber(ctx context.Context, number string) (*models.Article, error) {
	var article models.Article
	if err := r.DB.WithContext(ctx).Where("article_number = ?", number).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *Repo) ListArticles(ctx context.Context, skip, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := r.DB.WithContext(ctx).
		Order("article_number ASC").
		Offset(skip).
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

func (r *Repo) CreateArticle(ctx context.Context, article *models.Article) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Article{}).
		Where("article_number = ?", article.ArticleNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateArticle
	}
	return r.DB.WithContext(ctx).Create(article).Error
}

func (r *Repo) SaveArticle(ctx context.Context, article *models.Article) error {
	return r.DB.WithContext(ctx).Save(article).Error
}

func (r *Repo) DeleteArticle(ctx context.Context, number string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Where("article_number = ?", number).
		Delete(&models.Article{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchArticles is the SQL fallback used when no search index is
// configured: a case-insensitive match over title and content.
func (r *Repo) SearchArticles(ctx context.Context, query string, skip, limit int) ([]models.Article, error) {
	var articles []models.Article
	pattern := "%" + query + "%"
	err := r.DB.WithContext(ctx).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("article_number ASC").
		Offset(skip).
		Limit(limit).
		Find(&articles).Error
	return articles, err
}
