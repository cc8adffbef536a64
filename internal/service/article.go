package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/ekrsw/knowledge/internal/logging"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/repo"
)

var ErrBadCSV = errors.New("malformed csv input")

type ArticleService struct {
	Repo  *repo.Repo
	ES    *elasticsearch.Client
	Index string
}

type ArticleCreate struct {
	ArticleNumber string `json:"article_number"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	IsActive      *bool  `json:"is_active"`
}

type ArticlePatch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"is_active"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

func (s *ArticleService) List(ctx context.Context, skip, limit int) ([]models.Article, error) {
	return s.Repo.ListArticles(ctx, skip, limit)
}

func (s *ArticleService) GetByNumber(ctx context.Context, number string) (*models.Article, error) {
	return s.Repo.GetArticleByNumber(ctx, number)
}

func (s *ArticleService) Create(ctx context.Context, in ArticleCreate) (*models.Article, error) {
	article := &models.Article{
		ArticleUUID:   uuid.NewString(),
		ArticleNumber: in.ArticleNumber,
		Title:         in.Title,
		Content:       in.Content,
		IsActive:      true,
	}
	if in.IsActive != nil {
		article.IsActive = *in.IsActive
	}
	if err := s.Repo.CreateArticle(ctx, article); err != nil {
		return nil, err
	}
	s.index(ctx, article)
	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, number string, patch ArticlePatch) (*models.Article, error) {
	article, err := s.Repo.GetArticleByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		article.Title = *patch.Title
	}
	if patch.Content != nil {
		article.Content = *patch.Content
	}
	if patch.IsActive != nil {
		article.IsActive = *patch.IsActive
	}
	if err := s.Repo.SaveArticle(ctx, article); err != nil {
		return nil, err
	}
	s.index(ctx, article)
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, number string) error {
	deleted, err := s.Repo.DeleteArticle(ctx, number)
	if err != nil {
		return err
	}
	if !deleted {
		return repo.ErrArticleNotFound
	}
	return nil
}

// Search uses the configured index when present and falls back to the
// SQL LIKE query otherwise.
func (s *ArticleService) Search(ctx context.Context, query string, skip, limit int) ([]models.Article, error) {
	if s.ES == nil {
		return s.Repo.SearchArticles(ctx, query, skip, limit)
	}
	return s.searchES(ctx, query, skip, limit)
}

// ImportCSV ingests rows of article_number,title,content[,is_active].
// Duplicate article numbers are skipped, not fatal; the caller gets the
// per-row outcome back.
func (s *ArticleService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	l := logging.FromContext(ctx).With("svc", "article.import")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, ErrBadCSV
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	numIdx, ok := col["article_number"]
	if !ok {
		return nil, ErrBadCSV
	}
	titleIdx, ok := col["title"]
	if !ok {
		return nil, ErrBadCSV
	}
	contentIdx, hasContent := col["content"]
	activeIdx, hasActive := col["is_active"]

	result := &ImportResult{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrBadCSV
		}
		if numIdx >= len(record) || titleIdx >= len(record) {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: missing fields", result.Imported+len(result.Skipped)+2))
			continue
		}

		in := ArticleCreate{
			ArticleNumber: strings.TrimSpace(record[numIdx]),
			Title:         strings.TrimSpace(record[titleIdx]),
		}
		if in.ArticleNumber == "" || in.Title == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: empty article_number or title", result.Imported+len(result.Skipped)+2))
			continue
		}
		if hasContent && contentIdx < len(record) {
			in.Content = record[contentIdx]
		}
		if hasActive && activeIdx < len(record) {
			if v, err := strconv.ParseBool(strings.TrimSpace(record[activeIdx])); err == nil {
				in.IsActive = &v
			}
		}

		if _, err := s.Create(ctx, in); err != nil {
			if errors.Is(err, repo.ErrDuplicateArticle) {
				result.Skipped = append(result.Skipped, in.ArticleNumber+": duplicate")
				continue
			}
			return nil, err
		}
		result.Imported++
	}

	l.Info("csv import done", "imported", result.Imported, "skipped", len(result.Skipped))
	return result, nil
}

func (s *ArticleService) searchES(ctx context.Context, query string, skip, limit int) ([]models.Article, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "content"},
				"fuzziness": "AUTO",
			},
		},
		"from": skip,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	articles := make([]models.Article, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		articles[i] = hit.Source
	}
	return articles, nil
}

// index mirrors an article into the search index, best-effort.
func (s *ArticleService) index(ctx context.Context, article *models.Article) {
	if s.ES == nil {
		return
	}
	data, err := json.Marshal(article)
	if err != nil {
		return
	}
	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(article.ArticleUUID),
	)
	if err != nil {
		logging.FromContext(ctx).Error("elasticsearch index error", "error", err)
		return
	}
	res.Body.Close()
}
