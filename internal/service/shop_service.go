package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/cart"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/receipt"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	Category    string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

type ShopService interface {
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id uint64) (*model.Product, error)
	CreateProduct(ctx context.Context, actor *model.User, in ProductInput) (*model.Product, error)
	AddToCart(ctx context.Context, c *cart.Cart, productID uint64) (cart.Line, error)
	Checkout(ctx context.Context, user *model.User, c *cart.Cart) (*model.Order, *model.Payment, error)
	CancelOrder(ctx context.Context, user *model.User, orderID uint64) (*model.Order, error)
	GetOrder(ctx context.Context, user *model.User, orderID uint64) (*model.Order, error)
	ListOrders(ctx context.Context, user *model.User) ([]model.Order, error)
	Invoice(ctx context.Context, user *model.User, orderID uint64) ([]byte, error)
}

type shopService struct {
	store    *repository.Store
	notify   NotificationService
	metrics  *metrics.Recorder
	currency string
	now      func() time.Time
}

func NewShopService(store *repository.Store, notify NotificationService, currency string, rec *metrics.Recorder) ShopService {
	if currency == "" {
		currency = "INR"
	}
	return &shopService{store: store, notify: notify, metrics: rec, currency: currency, now: time.Now}
}

func (s *shopService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Shop.ListActiveProducts(ctx, limit, offset)
}

// GetProduct hides inactive products and products in inactive categories.
func (s *shopService) GetProduct(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.store.Shop.FindProductByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !p.IsActive || (p.Category != nil && !p.Category.IsActive) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *shopService) CreateProduct(ctx context.Context, actor *model.User, in ProductInput) (*model.Product, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, invalid("name and category are required")
	}
	if !in.Price.IsPositive() {
		return nil, invalid("price must be positive")
	}
	if in.Stock < 0 {
		return nil, invalid("stock cannot be negative")
	}
	var p *model.Product
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cat, err := tx.Shop.FindOrCreateCategory(ctx, strings.TrimSpace(in.Category))
		if err != nil {
			return err
		}
		p = &model.Product{
			CategoryID:  cat.ID,
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price.Round(2),
			Stock:       in.Stock,
			IsActive:    true,
		}
		return tx.Shop.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *shopService) AddToCart(ctx context.Context, c *cart.Cart, productID uint64) (cart.Line, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return cart.Line{}, err
	}
	if line, ok := c.Lines[p.ID]; ok && line.Quantity >= p.Stock {
		return cart.Line{}, invalid("only %d of %s in stock", p.Stock, p.Name)
	}
	if p.Stock <= 0 {
		return cart.Line{}, invalid("%s is out of stock", p.Name)
	}
	return c.Add(p.ID, p.Name, p.Price), nil
}

func (s *shopService) Checkout(ctx context.Context, user *model.User, c *cart.Cart) (*model.Order, *model.Payment, error) {
	if !authz.Can(user, authz.Checkout) {
		return nil, nil, ErrForbidden
	}
	if c == nil || c.Empty() {
		return nil, nil, ErrEmptyCart
	}
	if _, err := s.store.Shop.FindOrderByToken(ctx, c.Token); err == nil {
		return nil, nil, ErrAlreadyCheckedOut
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	order := &model.Order{
		UserID:    user.ID,
		Total:     c.Total().Round(2),
		Status:    model.OrderStatusPending,
		CartToken: c.Token,
	}
	for _, it := range c.Items() {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	pay := &model.Payment{
		UserID:   user.ID,
		Kind:     model.PaymentForShop,
		Amount:   order.Total,
		Currency: s.currency,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for _, it := range order.Items {
			n, err := tx.Shop.TakeStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return invalid("not enough stock for %s", it.ProductName)
			}
		}
		if err := tx.Shop.CreateOrder(ctx, order); err != nil {
			return err
		}
		pay.OrderID = u64(order.ID)
		return createPending(ctx, tx.Payments, pay)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, nil, ErrAlreadyCheckedOut
	}
	if err != nil {
		return nil, nil, err
	}
	c.Clear()

	log.Printf("[shop] rid=%s actor=%d order=%d payment=%d total=%s items=%d stage=checkout",
		reqctx.RID(ctx), user.ID, order.ID, pay.ID, order.Total.StringFixed(2), len(order.Items))
	s.metrics.Checkout()
	s.notify.Notify(ctx, user.ID, "order_placed", "Order placed",
		fmt.Sprintf("Order #%d is waiting for payment of %s %s.", order.ID, s.currency, order.Total.StringFixed(2)),
		NotificationRef{PaymentID: u64(pay.ID)})
	return order, pay, nil
}

// restockOrder puts the items of an order that will not be fulfilled back
// into stock.
func restockOrder(ctx context.Context, tx *repository.Store, orderID uint64) error {
	o, err := tx.Shop.FindOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if err := tx.Shop.ReturnStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *shopService) GetOrder(ctx context.Context, user *model.User, orderID uint64) (*model.Order, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	o, err := s.store.Shop.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if o.UserID != user.ID && !authz.Can(user, authz.Administer) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *shopService) CancelOrder(ctx context.Context, user *model.User, orderID uint64) (*model.Order, error) {
	o, err := s.GetOrder(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Shop.TransitionOrder(ctx, o.ID, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if n == 0 {
			return badTransition("order is %s", o.Status)
		}
		open, err := tx.Payments.FindOpenFor(ctx, model.PaymentForShop, o.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		case open.Status == model.PaymentStatusPending:
			if _, err := tx.Payments.Settle(ctx, open.ID, model.PaymentStatusFailed, "", "order cancelled", s.now()); err != nil {
				return err
			}
		}
		return restockOrder(ctx, tx, o.ID)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[shop] rid=%s actor=%d order=%d stage=cancelled", reqctx.RID(ctx), user.ID, o.ID)
	return s.store.Shop.FindOrderByID(ctx, o.ID)
}

func (s *shopService) ListOrders(ctx context.Context, user *model.User) ([]model.Order, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	return s.store.Shop.ListOrdersByUser(ctx, user.ID)
}

func (s *shopService) Invoice(ctx context.Context, user *model.User, orderID uint64) ([]byte, error) {
	o, err := s.GetOrder(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPaid {
		return nil, badTransition("order is %s", o.Status)
	}
	customer, err := s.store.Users.FindByID(ctx, o.UserID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	inv := receipt.Invoice{
		OrderID:  o.ID,
		IssuedAt: o.UpdatedAt,
		Customer: customer.Name,
		Currency: s.currency,
		Total:    o.Total,
	}
	for _, it := range o.Items {
		inv.Lines = append(inv.Lines, receipt.InvoiceLine{Name: it.ProductName, Price: it.Price, Quantity: it.Quantity})
	}
	return receipt.RenderInvoice(inv)
}
