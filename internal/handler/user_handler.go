package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/authz"
	appmw "github.com/shinyyama/petverse-backend/internal/middleware"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type UserResponse struct {
	ID           uint64   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	HasPet       bool     `json:"hasPet"`
	Capabilities []string `json:"capabilities,omitempty"`
	CreatedAt    string   `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		HasPet:    u.HasPet,
		CreatedAt: rfc3339(u.CreatedAt),
	}
}

type signupRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	u, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		FirebaseUID: appmw.UID(c),
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Me(c echo.Context) error {
	u := user(c)
	resp := toUserResponse(u)
	for _, cp := range authz.Capabilities(u.Role) {
		resp.Capabilities = append(resp.Capabilities, string(cp))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	users, total, err := h.svc.List(c.Request().Context(), user(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": resp, "total": total})
}

func (h *UserHandler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	users := map[string]int64{}
	for role, n := range d.UsersByRole {
		users[string(role)] = n
	}
	requests := map[string]int64{}
	for status, n := range d.RequestsBy {
		requests[string(status)] = n
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"usersByRole":      users,
		"pets":             d.Pets,
		"adoptionRequests": requests,
		"paidPayments":     d.PaidPayments,
	})
}
