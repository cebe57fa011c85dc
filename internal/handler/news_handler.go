package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type NewsHandler struct {
	svc service.NewsService
}

func NewNewsHandler(svc service.NewsService) *NewsHandler {
	return &NewsHandler{svc: svc}
}

type NewsResponse struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

func toNewsResponse(n *model.News) NewsResponse {
	return NewsResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		ImageURL:  n.ImageURL,
		CreatedAt: rfc3339(n.CreatedAt),
	}
}

type newsRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

func (h *NewsHandler) Latest(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.svc.Latest(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]NewsResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toNewsResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *NewsHandler) Publish(c echo.Context) error {
	var req newsRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	n, err := h.svc.Publish(c.Request().Context(), user(c), service.NewsInput{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toNewsResponse(n))
}
