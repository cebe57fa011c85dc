package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/petverse-backend/internal/handler"
	appmw "github.com/shinyyama/petverse-backend/internal/middleware"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	"github.com/shinyyama/petverse-backend/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Users         service.UserService
	Catalog       service.CatalogService
	Adoptions     service.AdoptionService
	Payments      service.PaymentService
	Bookings      service.BookingService
	Chats         service.ChatService
	Shop          service.ShopService
	Notifications service.NotificationService
	Earnings      service.EarningsService
	Advisor       service.AdvisorService
	News          service.NewsService
}

type Options struct {
	Auth         *appmw.AuthMiddleware
	Sessions     sessions.Store
	GatewayKeyID string
	Metrics      *metrics.Recorder
	// Ping reports database health for /healthz; nil skips the check.
	Ping      func(ctx context.Context) error
	SHA       string
	BuildTime string
}

type Server struct {
	e *echo.Echo
}

func allowOrigin(origin string) (bool, error) {
	low := strings.ToLower(origin)
	if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
		strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
		return true, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}
	host := u.Hostname()
	if strings.HasSuffix(host, "vercel.app") {
		return true, nil
	}
	return false, nil
}

func New(svc Services, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestContext)
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", appmw.DebugUserHeader},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin,
	}))

	userHandler := handler.NewUserHandler(svc.Users)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	adoptionHandler := handler.NewAdoptionHandler(svc.Adoptions, svc.Payments, svc.Notifications)
	paymentHandler := handler.NewPaymentHandler(svc.Payments, opts.GatewayKeyID)
	bookingHandler := handler.NewBookingHandler(svc.Bookings)
	chatHandler := handler.NewChatHandler(svc.Chats)
	shopHandler := handler.NewShopHandler(svc.Shop, opts.Sessions)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	earningsHandler := handler.NewEarningsHandler(svc.Earnings)
	advisorHandler := handler.NewAdvisorHandler(svc.Advisor)
	newsHandler := handler.NewNewsHandler(svc.News)

	e.GET("/healthz", func(c echo.Context) error {
		status := http.StatusOK
		resp := map[string]string{
			"ok":         "true",
			"git_sha":    opts.SHA,
			"build_time": opts.BuildTime,
		}
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				resp["ok"] = "false"
				resp["db"] = err.Error()
			}
		}
		return c.JSON(status, resp)
	})
	e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))

	api := e.Group("/api")
	auth := opts.Auth.RequireUser

	// public
	api.GET("/pets", catalogHandler.Browse)
	api.GET("/pets/:id", catalogHandler.GetPet)
	api.GET("/news", newsHandler.Latest)
	api.GET("/services", bookingHandler.ListServices)
	api.GET("/products", shopHandler.ListProducts)
	api.GET("/products/:id", shopHandler.GetProduct)
	api.GET("/cart", shopHandler.GetCart)
	api.POST("/cart/items", shopHandler.AddToCart)
	api.DELETE("/cart/items/:productId", shopHandler.RemoveFromCart)

	api.POST("/signup", userHandler.Signup, opts.Auth.RequireToken)
	api.GET("/me", userHandler.Me, auth)
	api.GET("/me/notifications", notificationHandler.List, auth)
	api.POST("/me/notifications/read", notificationHandler.MarkAllRead, auth)
	api.GET("/me/earnings", earningsHandler.Get, auth)
	api.POST("/me/earnings/withdraw", earningsHandler.Withdraw, auth)

	api.POST("/pets/:id/ask", advisorHandler.AskPet, auth)
	api.GET("/shelter/pets", catalogHandler.ListShelterPets, auth)
	api.POST("/shelter/pets", catalogHandler.AddShelterPet, auth)
	api.PUT("/shelter/pets/:id", catalogHandler.UpdateShelterPet, auth)
	api.PATCH("/shelter/pets/:id/availability", catalogHandler.SetAvailability, auth)
	api.DELETE("/shelter/pets/:id", catalogHandler.DeleteShelterPet, auth)
	api.GET("/me/pets", catalogHandler.ListOwnedPets, auth)
	api.POST("/me/pets", catalogHandler.AddOwnedPet, auth)
	api.PATCH("/me/pets/:id/listing", catalogHandler.SetListing, auth)

	api.POST("/adoptions", adoptionHandler.Create, auth)
	api.GET("/adoptions/:id", adoptionHandler.Get, auth)
	api.POST("/adoptions/:id/approve", adoptionHandler.Approve, auth)
	api.POST("/adoptions/:id/decline", adoptionHandler.Decline, auth)
	api.POST("/adoptions/:id/payment", adoptionHandler.CreatePayment, auth)
	api.POST("/adoptions/:id/chat", chatHandler.OpenRoom, auth)
	api.GET("/me/adoptions", adoptionHandler.ListMine, auth)
	api.GET("/me/adoptions/incoming", adoptionHandler.ListIncoming, auth)
	api.GET("/chats/:id/messages", chatHandler.ListMessages, auth)
	api.POST("/chats/:id/messages", chatHandler.PostMessage, auth)

	api.POST("/appointments", bookingHandler.Book, auth)
	api.GET("/appointments/:id", bookingHandler.Get, auth)
	api.POST("/appointments/confirm", bookingHandler.Confirm, auth)
	api.POST("/appointments/:id/retry-payment", bookingHandler.RetryPayment, auth)
	api.POST("/appointments/:id/cancel", bookingHandler.Cancel, auth)
	api.GET("/me/appointments", bookingHandler.ListMine, auth)

	api.GET("/me/payments", paymentHandler.ListMine, auth)
	api.GET("/payments/:id", paymentHandler.Get, auth)
	api.POST("/payments/:id/order", paymentHandler.CreateOrder, auth)
	api.POST("/payments/:id/verify", paymentHandler.Verify, auth)
	api.GET("/payments/:id/receipt", paymentHandler.Receipt, auth)

	api.POST("/cart/checkout", shopHandler.Checkout, auth)
	api.GET("/me/orders", shopHandler.ListOrders, auth)
	api.GET("/orders/:id", shopHandler.GetOrder, auth)
	api.POST("/orders/:id/cancel", shopHandler.CancelOrder, auth)
	api.GET("/orders/:id/invoice", shopHandler.Invoice, auth)

	admin := api.Group("/admin", auth)
	admin.GET("/dashboard", userHandler.Dashboard)
	admin.GET("/users", userHandler.List)
	admin.GET("/adoptions", adoptionHandler.ListIncoming)
	admin.GET("/appointments", bookingHandler.ListAll)
	admin.POST("/appointments/:id/complete", bookingHandler.Complete)
	admin.POST("/services", bookingHandler.CreateService)
	admin.POST("/products", shopHandler.CreateProduct)
	admin.POST("/news", newsHandler.Publish)

	return &Server{e: e}
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
