package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/cart"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/shopspring/decimal"
)

const (
	cartSession = "petverse-cart"
	cartKey     = "cart"
)

type ShopHandler struct {
	svc      service.ShopService
	sessions sessions.Store
}

// NewShopHandler keeps each visitor's cart in a session from store.
func NewShopHandler(svc service.ShopService, store sessions.Store) *ShopHandler {
	return &ShopHandler{svc: svc, sessions: store}
}

type ProductResponse struct {
	ID          uint64 `json:"id"`
	CategoryID  uint64 `json:"categoryId"`
	Category    string `json:"category,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
}

func toProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	return resp
}

type CartLineResponse struct {
	ProductID uint64 `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total string             `json:"total"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	items := c.Items()
	resp := CartResponse{Items: make([]CartLineResponse, 0, len(items)), Total: c.Total().StringFixed(2)}
	for _, it := range items {
		resp.Items = append(resp.Items, CartLineResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	return resp
}

type OrderItemResponse struct {
	ProductID   uint64 `json:"productId"`
	ProductName string `json:"productName"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

type OrderResponse struct {
	ID        uint64              `json:"id"`
	UserID    uint64              `json:"userId"`
	Total     string              `json:"total"`
	Status    string              `json:"status"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt string              `json:"createdAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total.StringFixed(2),
		Status:    string(o.Status),
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: rfc3339(o.CreatedAt),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return resp
}

type productRequest struct {
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type addToCartRequest struct {
	ProductID uint64 `json:"productId"`
}

// loadCart returns the session cart. A missing or unreadable cookie yields a
// fresh cart; the bool reports whether the session held one at all.
func (h *ShopHandler) loadCart(c echo.Context) (*sessions.Session, *cart.Cart, bool) {
	sess, err := h.sessions.Get(c.Request(), cartSession)
	if err != nil {
		log.Printf("[cart] rid=%s stage=session err=%v", reqctx.RID(c.Request().Context()), err)
	}
	raw, found := sess.Values[cartKey].(string)
	ct, err := cart.Decode(raw)
	if err != nil {
		log.Printf("[cart] rid=%s stage=decode err=%v", reqctx.RID(c.Request().Context()), err)
		return sess, cart.New(), false
	}
	return sess, ct, found
}

func (h *ShopHandler) saveCart(c echo.Context, sess *sessions.Session, ct *cart.Cart) error {
	raw, err := ct.Encode()
	if err != nil {
		return err
	}
	sess.Values[cartKey] = raw
	return sess.Save(c.Request(), c.Response())
}

func (h *ShopHandler) ListProducts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	list, total, err := h.svc.ListProducts(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]ProductResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toProductResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": resp,
		"total":    total,
	})
}

func (h *ShopHandler) GetProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	p, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ShopHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	p, err := h.svc.CreateProduct(c.Request().Context(), user(c), service.ProductInput{
		Category:    req.Category,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ShopHandler) GetCart(c echo.Context) error {
	_, ct, _ := h.loadCart(c)
	return c.JSON(http.StatusOK, toCartResponse(ct))
}

func (h *ShopHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	sess, ct, _ := h.loadCart(c)
	if _, err := h.svc.AddToCart(c.Request().Context(), ct, req.ProductID); err != nil {
		return writeError(c, err)
	}
	if err := h.saveCart(c, sess, ct); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(ct))
}

func (h *ShopHandler) RemoveFromCart(c echo.Context) error {
	id, ok := parseID(c, "productId")
	if !ok {
		return badParam(c, "productId")
	}
	sess, ct, _ := h.loadCart(c)
	if !ct.Remove(id) {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not in cart"))
	}
	if err := h.saveCart(c, sess, ct); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(ct))
}

func (h *ShopHandler) Checkout(c echo.Context) error {
	sess, ct, found := h.loadCart(c)
	if !found {
		ct = nil
	}
	o, p, err := h.svc.Checkout(c.Request().Context(), user(c), ct)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.saveCart(c, sess, ct); err != nil {
		log.Printf("[cart] rid=%s order=%d stage=save err=%v", reqctx.RID(c.Request().Context()), o.ID, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"order":   toOrderResponse(o),
		"payment": toPaymentResponse(p),
	})
}

func (h *ShopHandler) ListOrders(c echo.Context) error {
	list, err := h.svc.ListOrders(c.Request().Context(), user(c))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) GetOrder(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	o, err := h.svc.GetOrder(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *ShopHandler) CancelOrder(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	o, err := h.svc.CancelOrder(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *ShopHandler) Invoice(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	pdf, err := h.svc.Invoice(c.Request().Context(), user(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("invoice-%d.pdf", id), pdf)
}
