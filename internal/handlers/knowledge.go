package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mwauth "github.com/ekrsw/knowledge/internal/middleware/auth"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/service"
	"github.com/ekrsw/knowledge/internal/util"
)

type KnowledgeHandler struct {
	Knowledge *service.KnowledgeService
}

type statusUpdateRequest struct {
	Status models.Status `json:"status"`
}

func (h *KnowledgeHandler) List(c echo.Context) error {
	skip, limit := util.Clamp(
		parseIntDefault(c.QueryParam("skip"), 0),
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
	)

	userID := parseIntDefault(c.QueryParam("user_id"), 0)
	if userID < 0 {
		userID = 0
	}

	filter := repo.KnowledgeFilter{
		Status:        models.Status(c.QueryParam("status")),
		UserID:        uint(userID),
		ArticleNumber: c.QueryParam("article_number"),
		Skip:          skip,
		Limit:         limit,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
	}

	items, err := h.Knowledge.List(c.Request().Context(), filter)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *KnowledgeHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid knowledge id")
	}

	item, err := h.Knowledge.Get(c.Request().Context(), uint(id))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *KnowledgeHandler) Create(c echo.Context) error {
	var req service.KnowledgeCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ArticleNumber == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "article_number and title are required")
	}

	item, err := h.Knowledge.Create(c.Request().Context(), req, mwauth.CurrentUser(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *KnowledgeHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid knowledge id")
	}

	var patch service.KnowledgePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	item, err := h.Knowledge.Update(c.Request().Context(), uint(id), patch, mwauth.CurrentUser(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *KnowledgeHandler) UpdateStatus(c echo.Context) error {
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	return h.setStatus(c, req.Status)
}

// Submit and Approve are shorthand over the status machine; they obey
// exactly the same transition rules as UpdateStatus.
func (h *KnowledgeHandler) Submit(c echo.Context) error {
	return h.setStatus(c, models.StatusSubmitted)
}

func (h *KnowledgeHandler) Approve(c echo.Context) error {
	return h.setStatus(c, models.StatusApproved)
}

func (h *KnowledgeHandler) setStatus(c echo.Context, status models.Status) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid knowledge id")
	}

	item, err := h.Knowledge.UpdateStatus(c.Request().Context(), uint(id), status, mwauth.CurrentUser(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *KnowledgeHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid knowledge id")
	}

	if err := h.Knowledge.Delete(c.Request().Context(), uint(id), mwauth.CurrentUser(c)); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
