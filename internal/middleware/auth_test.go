package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
	"github.com/shinyyama/petverse-backend/internal/service"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good-token" {
		return nil, errors.New("token expired")
	}
	return &auth.Token{UID: "firebase-asha"}, nil
}

type fakeUsers map[uint64]*model.User

func (f fakeUsers) Get(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, service.ErrNotFound
}

func (f fakeUsers) FindByFirebaseUID(_ context.Context, uid string) (*model.User, error) {
	for _, u := range f {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, service.ErrNotFound
}

func newUsers() fakeUsers {
	uid := "firebase-asha"
	return fakeUsers{7: {ID: 7, Name: "Asha", Role: model.RoleAdopter, FirebaseUID: &uid}}
}

func serve(t *testing.T, mw echo.MiddlewareFunc, headers map[string]string) (*httptest.ResponseRecorder, *model.User, uint64) {
	t.Helper()
	e := echo.New()
	var (
		got   *model.User
		ctxID uint64
	)
	e.GET("/", func(c echo.Context) error {
		got = CurrentUser(c)
		ctxID = reqctx.UserID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}, mw)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w, got, ctxID
}

func TestRequireUserWithFirebaseToken(t *testing.T) {
	m := &AuthMiddleware{verifier: fakeVerifier{}, users: newUsers()}

	w, u, ctxID := serve(t, m.RequireUser, map[string]string{"Authorization": "Bearer good-token"})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, uint64(7), u.ID)
	require.Equal(t, uint64(7), ctxID)

	w, _, _ = serve(t, m.RequireUser, map[string]string{"Authorization": "Bearer stale"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The debug header is ignored once a real verifier is configured.
	w, _, _ = serve(t, m.RequireUser, map[string]string{DebugUserHeader: "7"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUserUnregistered(t *testing.T) {
	m := NewDevAuthMiddleware(newUsers())

	w, _, _ := serve(t, m.RequireUser, map[string]string{"Authorization": "Bearer someone-else"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "not_registered")

	w, _, _ = serve(t, m.RequireUser, map[string]string{DebugUserHeader: "99"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDevAuthDebugHeader(t *testing.T) {
	m := NewDevAuthMiddleware(newUsers())

	w, u, _ := serve(t, m.RequireUser, map[string]string{DebugUserHeader: "7"})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "Asha", u.Name)

	w, _, _ = serve(t, m.RequireUser, map[string]string{DebugUserHeader: "seven"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireTokenSetsUID(t *testing.T) {
	m := &AuthMiddleware{verifier: fakeVerifier{}, users: newUsers()}
	e := echo.New()
	var uid string
	e.POST("/signup", func(c echo.Context) error {
		uid = UID(c)
		return c.NoContent(http.StatusNoContent)
	}, m.RequireToken)

	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "firebase-asha", uid)
}

func TestRequestContextCopiesRequestID(t *testing.T) {
	e := echo.New()
	var rid string
	e.GET("/", func(c echo.Context) error {
		rid = reqctx.RID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}, RequestContext)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	e.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "req-123", rid)
}
