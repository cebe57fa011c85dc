package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shinyyama/petverse-backend/internal/blob"
	"github.com/shinyyama/petverse-backend/internal/db/dbtest"
	"github.com/shinyyama/petverse-backend/internal/gateway"
	"github.com/shinyyama/petverse-backend/internal/mailer"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	store    *repository.Store
	gw       *gateway.Sandbox
	mail     *mailer.Recorder
	dispatch *mailer.Dispatcher
	archive  *blob.Memory
	metrics  *metrics.Recorder

	notify   NotificationService
	users    UserService
	catalog  CatalogService
	adoption AdoptionService
	payments PaymentService
	booking  BookingService
	chat     ChatService
	shop     ShopService
	earnings EarningsService
	news     NewsService
}

func newEnv(t *testing.T) *testEnv {
	return newEnvWithGateway(t, nil)
}

// newEnvWithGateway replaces the sandbox gateway used by the payment
// service when gw is non-nil.
func newEnvWithGateway(t *testing.T, gw gateway.Gateway) *testEnv {
	t.Helper()
	conn := dbtest.Open(t)
	store := repository.NewStore(conn)
	e := &testEnv{
		db:       conn,
		store:    store,
		gw:       gateway.NewSandbox("test-secret"),
		mail:     &mailer.Recorder{},
		dispatch: mailer.NewDispatcher(5 * time.Second),
		archive:  blob.NewMemory(),
		metrics:  metrics.New(),
	}
	if gw == nil {
		gw = e.gw
	}
	e.notify = NewNotificationService(store.Notifications)
	e.users = NewUserService(store)
	e.catalog = NewCatalogService(store)
	e.adoption = NewAdoptionService(store, e.notify, e.metrics)
	e.payments = NewPaymentService(store, gw, e.notify, PaymentConfig{
		Currency:   "INR",
		Timeout:    time.Second,
		Mail:       e.mail,
		Dispatcher: e.dispatch,
		Archive:    e.archive,
		Metrics:    e.metrics,
	})
	e.booking = NewBookingService(store, e.payments, e.notify, time.UTC, e.metrics)
	e.chat = NewChatService(store, e.notify)
	e.shop = NewShopService(store, e.notify, "INR", e.metrics)
	e.earnings = NewEarningsService(store.Balances)
	e.news = NewNewsService(store.News)
	return e
}

func (e *testEnv) user(t *testing.T, role model.Role, name string) *model.User {
	t.Helper()
	u := &model.User{
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
		Role:  role,
	}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	return u
}

// listedShelterPet adds a pet for shelter and makes it available.
func (e *testEnv) listedShelterPet(t *testing.T, shelter *model.User, name, fee string) *model.Pet {
	t.Helper()
	ctx := context.Background()
	p, err := e.catalog.AddShelterPet(ctx, shelter, PetInput{
		Name:        name,
		Category:    "dog",
		Description: "friendly",
		AdoptionFee: decimal.RequireFromString(fee),
	})
	require.NoError(t, err)
	p, err = e.catalog.SetPetAvailability(ctx, shelter, p.ID, true)
	require.NoError(t, err)
	return p
}

func (e *testEnv) ownedPet(t *testing.T, owner *model.User, name string, listed bool) *model.OwnedPet {
	t.Helper()
	ctx := context.Background()
	o, err := e.catalog.AddOwnedPet(ctx, owner, PetInput{Name: name, Category: "cat"})
	require.NoError(t, err)
	if listed {
		o, err = e.catalog.SetOwnedPetListing(ctx, owner, o.ID, true)
		require.NoError(t, err)
	}
	return o
}

func (e *testEnv) service(t *testing.T, name, price string) *model.Service {
	t.Helper()
	admin := &model.User{Role: model.RoleAdmin}
	svc, err := e.booking.CreateService(context.Background(), admin, ServiceInput{
		Category: "grooming",
		Name:     name,
		Price:    decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return svc
}

func (e *testEnv) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	admin := &model.User{Role: model.RoleAdmin}
	p, err := e.shop.CreateProduct(context.Background(), admin, ProductInput{
		Category: "food",
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

// pay drives a pending payment through the sandbox checkout and returns the
// settled payment.
func (e *testEnv) pay(t *testing.T, payer *model.User, paymentID uint64) *model.Payment {
	t.Helper()
	ctx := context.Background()
	p, err := e.payments.InitiateGatewayOrder(ctx, payer, paymentID)
	require.NoError(t, err)
	p, err = e.payments.VerifyAndSettle(ctx, payer, SettleInput{
		PaymentID:        p.ID,
		GatewayPaymentID: "pay_test",
		GatewayOrderID:   p.GatewayOrderID,
		Signature:        e.gw.Sign(p.GatewayOrderID, "pay_test"),
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPaid, p.Status)
	return p
}

func futureSlot(days int) (string, string) {
	at := time.Now().UTC().AddDate(0, 0, days)
	return at.Format("2006-01-02"), "10:30"
}
