package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/shinyyama/petverse-backend/internal/ai"
	"github.com/shinyyama/petverse-backend/internal/blob"
	"github.com/shinyyama/petverse-backend/internal/config"
	"github.com/shinyyama/petverse-backend/internal/db"
	"github.com/shinyyama/petverse-backend/internal/gateway"
	"github.com/shinyyama/petverse-backend/internal/mailer"
	"github.com/shinyyama/petverse-backend/internal/metrics"
	appmw "github.com/shinyyama/petverse-backend/internal/middleware"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"github.com/shinyyama/petverse-backend/internal/server"
	"github.com/shinyyama/petverse-backend/internal/service"
)

// Set with -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}
	store := repository.NewStore(conn)

	gw, err := gateway.New(gateway.Config{
		Driver:    cfg.GatewayDriver,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
	})
	if err != nil {
		log.Fatalf("gateway init error: %v", err)
	}

	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}
	dispatcher := mailer.NewDispatcher(30 * time.Second)

	archive, err := blob.New(ctx, blob.Config{
		Driver:            cfg.ReceiptStore,
		Bucket:            cfg.ReceiptBucket,
		GoogleCredentials: cfg.GoogleCredentials,
		S3Region:          cfg.S3Region,
		S3Endpoint:        cfg.S3Endpoint,
		S3PathStyle:       cfg.S3PathStyle,
	})
	if err != nil {
		log.Fatalf("receipt store init error: %v", err)
	}

	rec := metrics.New()
	notify := service.NewNotificationService(store.Notifications)
	payments := service.NewPaymentService(store, gw, notify, service.PaymentConfig{
		Currency:   cfg.Currency,
		Timeout:    cfg.GatewayTimeout,
		Mail:       sender,
		Dispatcher: dispatcher,
		Archive:    archive,
		Metrics:    rec,
	})
	users := service.NewUserService(store)
	svc := server.Services{
		Users:         users,
		Catalog:       service.NewCatalogService(store),
		Adoptions:     service.NewAdoptionService(store, notify, rec),
		Payments:      payments,
		Bookings:      service.NewBookingService(store, payments, notify, cfg.Location(), rec),
		Chats:         service.NewChatService(store, notify),
		Shop:          service.NewShopService(store, notify, cfg.Currency, rec),
		Notifications: notify,
		Earnings:      service.NewEarningsService(store.Balances),
		Advisor:       service.NewAdvisorService(store, ai.NewGeminiAdvisor(cfg.GeminiAPIKey, cfg.GeminiModel), cfg.Currency),
		News:          service.NewNewsService(store.News),
	}

	var authMw *appmw.AuthMiddleware
	if cfg.DevAuth() {
		log.Printf("FIREBASE_PROJECT_ID not set; using %s header auth", appmw.DebugUserHeader)
		authMw = appmw.NewDevAuthMiddleware(users)
	} else {
		authMw, err = appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.GoogleCredentials, users)
		if err != nil {
			log.Fatalf("failed to init firebase auth: %v", err)
		}
	}

	sessionKey := []byte(cfg.SessionSecret)
	if len(sessionKey) == 0 {
		// dev auth only; config.Load rejects an empty secret otherwise
		log.Printf("SESSION_SECRET not set; carts will not survive a restart")
		sessionKey = securecookie.GenerateRandomKey(32)
	}
	cookies := sessions.NewCookieStore(sessionKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	srv := server.New(svc, server.Options{
		Auth:         authMw,
		Sessions:     cookies,
		GatewayKeyID: cfg.RazorpayKeyID,
		Metrics:      rec,
		Ping:         store.Ping,
		SHA:          gitSHA,
		BuildTime:    buildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
	dispatcher.Wait()
}
