package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	svc service.CatalogService
}

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type PetResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	AdoptionFee string  `json:"adoptionFee"`
	IsAvailable bool    `json:"isAvailable"`
	AddedByID   uint64  `json:"addedById"`
	CreatedAt   string  `json:"createdAt"`
}

func toPetResponse(p *model.Pet) PetResponse {
	return PetResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		AdoptionFee: p.AdoptionFee.StringFixed(2),
		IsAvailable: p.IsAvailable,
		AddedByID:   p.AddedByID,
		CreatedAt:   rfc3339(p.CreatedAt),
	}
}

type OwnedPetResponse struct {
	ID                  uint64       `json:"id"`
	OwnerID             uint64       `json:"ownerId"`
	Pet                 *PetResponse `json:"pet,omitempty"`
	IsListedForAdoption bool         `json:"isListedForAdoption"`
	Active              bool         `json:"active"`
	AcquiredAt          string       `json:"acquiredAt"`
	RetiredAt           *string      `json:"retiredAt,omitempty"`
}

func toOwnedPetResponse(o *model.OwnedPet) OwnedPetResponse {
	resp := OwnedPetResponse{
		ID:                  o.ID,
		OwnerID:             o.OwnerID,
		IsListedForAdoption: o.IsListedForAdoption,
		Active:              o.Active(),
		AcquiredAt:          rfc3339(o.AcquiredAt),
		RetiredAt:           optTime(o.RetiredAt),
	}
	if o.Pet != nil {
		p := toPetResponse(o.Pet)
		resp.Pet = &p
	}
	return resp
}

type petRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	AdoptionFee decimal.Decimal `json:"adoptionFee"`
}

func (r petRequest) input() service.PetInput {
	return service.PetInput{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		AdoptionFee: r.AdoptionFee,
	}
}

type toggleRequest struct {
	Value *bool `json:"value"`
}

func (h *CatalogHandler) Browse(c echo.Context) error {
	l, err := h.svc.Browse(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	pets := make([]PetResponse, 0, len(l.Pets))
	for i := range l.Pets {
		pets = append(pets, toPetResponse(&l.Pets[i]))
	}
	owned := make([]OwnedPetResponse, 0, len(l.OwnedPets))
	for i := range l.OwnedPets {
		owned = append(owned, toOwnedPetResponse(&l.OwnedPets[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"pets": pets, "ownedPets": owned})
}

func (h *CatalogHandler) GetPet(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.svc.GetPet(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPetResponse(p))
}

func (h *CatalogHandler) AddShelterPet(c echo.Context) error {
	var req petRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.AddShelterPet(c.Request().Context(), user(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPetResponse(p))
}

func (h *CatalogHandler) UpdateShelterPet(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req petRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.UpdateShelterPet(c.Request().Context(), user(c), id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPetResponse(p))
}

func (h *CatalogHandler) SetAvailability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return badJSON(c)
	}
	p, err := h.svc.SetPetAvailability(c.Request().Context(), user(c), id, *req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPetResponse(p))
}

func (h *CatalogHandler) DeleteShelterPet(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.svc.DeleteShelterPet(c.Request().Context(), user(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) ListShelterPets(c echo.Context) error {
	list, err := h.svc.ListShelterPets(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]PetResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toPetResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) AddOwnedPet(c echo.Context) error {
	var req petRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	o, err := h.svc.AddOwnedPet(c.Request().Context(), user(c), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOwnedPetResponse(o))
}

func (h *CatalogHandler) SetListing(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return badJSON(c)
	}
	o, err := h.svc.SetOwnedPetListing(c.Request().Context(), user(c), id, *req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnedPetResponse(o))
}

func (h *CatalogHandler) ListOwnedPets(c echo.Context) error {
	list, err := h.svc.ListOwnedPets(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]OwnedPetResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOwnedPetResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
