package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekrsw/knowledge/internal/service"
	"github.com/ekrsw/knowledge/internal/util"
)

type ArticleHandler struct {
	Articles *service.ArticleService
}

func (h *ArticleHandler) List(c echo.Context) error {
	skip, limit := util.Clamp(
		parseIntDefault(c.QueryParam("skip"), 0),
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
	)

	articles, err := h.Articles.List(c.Request().Context(), skip, limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.Articles.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	skip, limit := util.Clamp(
		parseIntDefault(c.QueryParam("skip"), 0),
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
	)

	articles, err := h.Articles.Search(c.Request().Context(), query, skip, limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) Create(c echo.Context) error {
	var req service.ArticleCreate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ArticleNumber == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "article_number and title are required")
	}

	article, err := h.Articles.Create(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) Update(c echo.Context) error {
	var patch service.ArticlePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	article, err := h.Articles.Update(c.Request().Context(), c.Param("number"), patch)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.Articles.Delete(c.Request().Context(), c.Param("number")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ArticleHandler) ImportCSV(c echo.Context) error {
	body := c.Request().Body
	defer body.Close()

	result, err := h.Articles.ImportCSV(c.Request().Context(), body)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}
