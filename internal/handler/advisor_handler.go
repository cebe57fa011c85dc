package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type AdvisorHandler struct {
	svc service.AdvisorService
}

func NewAdvisorHandler(svc service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{svc: svc}
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *AdvisorHandler) AskPet(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	answer, err := h.svc.Ask(c.Request().Context(), user(c), id, req.Question)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}
