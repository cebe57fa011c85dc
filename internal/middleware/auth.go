package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/service"
	"google.golang.org/api/option"
)

const (
	// DebugUserHeader selects the acting user by id when Firebase is not
	// configured.
	DebugUserHeader = "X-Debug-User-ID"

	uidKey  = "uid"
	userKey = "user"
)

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type UserLookup interface {
	Get(ctx context.Context, id uint64) (*model.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	users    UserLookup
}

func NewAuthMiddleware(ctx context.Context, projectID, credentialsFile string, users UserLookup) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{verifier: client, users: users}, nil
}

// NewDevAuthMiddleware trusts the bearer token as the Firebase uid and
// accepts DebugUserHeader. Never use it in production.
func NewDevAuthMiddleware(users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

func unauthorized(c echo.Context, code string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"error": map[string]string{"code": code, "message": "authentication required"},
	})
}

func (m *AuthMiddleware) uid(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if m.verifier == nil {
		return tokenStr, nil
	}
	token, err := m.verifier.VerifyIDToken(c.Request().Context(), tokenStr)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// RequireToken only checks the Firebase token; used by signup before a user
// row exists.
func (m *AuthMiddleware) RequireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := m.uid(c)
		if err != nil {
			return unauthorized(c, "invalid_token")
		}
		c.Set(uidKey, uid)
		return next(c)
	}
}

// RequireUser resolves the acting user and stores it on the context.
func (m *AuthMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var (
			u   *model.User
			err error
		)
		if raw := c.Request().Header.Get(DebugUserHeader); raw != "" && m.verifier == nil {
			id, perr := strconv.ParseUint(raw, 10, 64)
			if perr != nil {
				return unauthorized(c, "invalid_token")
			}
			u, err = m.users.Get(ctx, id)
		} else {
			uid, verr := m.uid(c)
			if verr != nil {
				return unauthorized(c, "invalid_token")
			}
			c.Set(uidKey, uid)
			u, err = m.users.FindByFirebaseUID(ctx, uid)
		}
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"error": map[string]string{"code": "not_registered", "message": "sign up first"},
			})
		}
		if err != nil {
			log.Printf("[auth] rid=%s stage=user_lookup err=%v", reqctx.RID(ctx), err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": map[string]string{"code": "internal_error", "message": "failed to load user"},
			})
		}
		c.Set(userKey, u)
		c.SetRequest(c.Request().WithContext(reqctx.WithUserID(ctx, u.ID)))
		return next(c)
	}
}

func UID(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}

func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}
