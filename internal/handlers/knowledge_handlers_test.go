package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekrsw/knowledge/internal/models"
)

func seedArticleAPI(env *testEnv, adminToken, number string) {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/v1/articles", adminToken, map[string]any{
		"article_number": number,
		"title":          "Reference " + number,
		"content":        "reference body",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())
}

func createKnowledge(env *testEnv, token, number string) uint {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/v1/knowledge", token, map[string]any{
		"article_number": number,
		"change_type":    "modify",
		"title":          "fix typo",
		"question":       "why is it wrong",
		"answer":         "because",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var item struct {
		ID uint `json:"id"`
	}
	env.decode(rec, &item)
	return item.ID
}

// End-to-end review: non-owner is 403, owner submits, admin approves,
// and the derived fields move with the status.
func TestKnowledgeReviewScenario(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)
	bobToken, _ := env.registerAndLogin("bob", "password123", false)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	seedArticleAPI(env, adminToken, "KBA-01234-AB567")
	id := createKnowledge(env, aliceToken, "KBA-01234-AB567")

	// Bob is neither owner nor admin: forbidden, not "not found".
	rec := env.do(http.MethodPatch, "/api/v1/knowledge/1/status", bobToken, map[string]any{"status": "submitted"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/knowledge/1/status", aliceToken, map[string]any{"status": "submitted"})
	require.Equal(t, http.StatusOK, rec.Code)

	var item struct {
		Status      models.Status `json:"status"`
		SubmittedAt *string       `json:"submitted_at"`
		ApprovedAt  *string       `json:"approved_at"`
		ApprovedBy  *uint         `json:"approved_by"`
	}
	env.decode(rec, &item)
	require.Equal(t, models.StatusSubmitted, item.Status)
	require.NotNil(t, item.SubmittedAt)
	require.Nil(t, item.ApprovedAt)

	// The owner cannot approve their own item.
	rec = env.do(http.MethodPatch, "/api/v1/knowledge/1/status", aliceToken, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/knowledge/1/status", adminToken, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &item)
	require.Equal(t, models.StatusApproved, item.Status)
	require.NotNil(t, item.ApprovedAt)
	require.NotNil(t, item.ApprovedBy)

	// Admin pulls it back; approval fields clear.
	rec = env.do(http.MethodPatch, "/api/v1/knowledge/1/status", adminToken, map[string]any{"status": "draft"})
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &item)
	require.Equal(t, models.StatusDraft, item.Status)
	require.Nil(t, item.ApprovedAt)
	require.Nil(t, item.ApprovedBy)
	require.NotNil(t, item.SubmittedAt)

	_ = id
}

func TestKnowledgeStatusUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	rec := env.do(http.MethodPatch, "/api/v1/knowledge/999/status", adminToken, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnowledgeCreateUnknownArticle(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)

	rec := env.do(http.MethodPost, "/api/v1/knowledge", aliceToken, map[string]any{
		"article_number": "KBA-99999-XX999",
		"change_type":    "modify",
		"title":          "x",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnowledgeDeletePolicy(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	seedArticleAPI(env, adminToken, "KBA-01234-AB567")
	createKnowledge(env, aliceToken, "KBA-01234-AB567")

	// Current policy: even admins may not delete someone else's item.
	rec := env.do(http.MethodDelete, "/api/v1/knowledge/1", adminToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/knowledge/1", aliceToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/knowledge/1", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKnowledgeListFilter(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	seedArticleAPI(env, adminToken, "KBA-00001-AB001")
	seedArticleAPI(env, adminToken, "KBA-00002-AB002")
	createKnowledge(env, aliceToken, "KBA-00001-AB001")
	createKnowledge(env, aliceToken, "KBA-00002-AB002")

	rec := env.do(http.MethodPatch, "/api/v1/knowledge/1/status", aliceToken, map[string]any{"status": "submitted"})
	require.Equal(t, http.StatusOK, rec.Code)

	var items []struct {
		ID     uint          `json:"id"`
		Status models.Status `json:"status"`
	}

	rec = env.do(http.MethodGet, "/api/v1/knowledge?status=submitted", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &items)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, items[0].ID)

	rec = env.do(http.MethodGet, "/api/v1/knowledge?article_number=KBA-00002-AB002", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &items)
	require.Len(t, items, 1)
	require.EqualValues(t, 2, items[0].ID)

	rec = env.do(http.MethodGet, "/api/v1/knowledge?status=bogus", aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// A negative user_id must not wrap into a real filter.
	rec = env.do(http.MethodGet, "/api/v1/knowledge?user_id=-1", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &items)
	require.Len(t, items, 2)
}

// The submit/approve shortcuts go through the same status machine as
// the status endpoint, permission rules included.
func TestKnowledgeSubmitApproveShortcuts(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	seedArticleAPI(env, adminToken, "KBA-01234-AB567")
	createKnowledge(env, aliceToken, "KBA-01234-AB567")

	rec := env.do(http.MethodPost, "/api/v1/knowledge/1/submit", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var item struct {
		Status      models.Status `json:"status"`
		SubmittedAt *string       `json:"submitted_at"`
		ApprovedBy  *uint         `json:"approved_by"`
	}
	env.decode(rec, &item)
	require.Equal(t, models.StatusSubmitted, item.Status)
	require.NotNil(t, item.SubmittedAt)

	// Owners cannot approve their own item here either.
	rec = env.do(http.MethodPost, "/api/v1/knowledge/1/approve", aliceToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/knowledge/1/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &item)
	require.Equal(t, models.StatusApproved, item.Status)
	require.NotNil(t, item.ApprovedBy)
}

func TestArticleAdminGate(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)

	rec := env.do(http.MethodPost, "/api/v1/articles", aliceToken, map[string]any{
		"article_number": "KBA-00001-AB001",
		"title":          "nope",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestArticleSearchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.registerAndLogin("alice", "password123", false)
	adminToken, _ := env.registerAndLogin("root", "rootpass", true)

	seedArticleAPI(env, adminToken, "KBA-00001-AB001")

	rec := env.do(http.MethodGet, "/api/v1/articles/search?q=reference", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var articles []struct {
		ArticleNumber string `json:"article_number"`
	}
	env.decode(rec, &articles)
	require.Len(t, articles, 1)

	rec = env.do(http.MethodGet, "/api/v1/articles/search", aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
