package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/logger"
)

type fakeSessionStore struct {
	sessions map[string]*Session
	err      error
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func doRequest(t *testing.T, store SessionStore, cookie string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: clients.SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := RequireSession(store, logger.New("error", "json"))(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	return rec, captured
}

func TestRequireSession_MissingCookie(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*Session{}}

	rec, captured := doRequest(t, store, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireSession_UnknownToken(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*Session{}}

	rec, captured := doRequest(t, store, "stale-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireSession_Valid(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*Session{
		"good-token": {UserID: 7},
	}}

	rec, captured := doRequest(t, store, "good-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	assert.Equal(t, int64(7), GetUserID(captured))
	assert.Equal(t, "good-token", GetSessionToken(captured))

	// the token is mirrored into the request context for outbound clients
	token, ok := clients.GetSessionToken(captured.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, "good-token", token)
}

func TestRequireSession_HeaderFallback(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*Session{
		"header-token": {UserID: 9},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionTokenHeader, "header-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := RequireSession(store, logger.New("error", "json"))(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, int64(9), GetUserID(captured))
}

func TestRequireSession_StoreFailure(t *testing.T) {
	store := &fakeSessionStore{err: assert.AnError}

	rec, captured := doRequest(t, store, "any-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, captured)
}

func TestGetUserID_Unset(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, int64(0), GetUserID(c))
	assert.Equal(t, "", GetSessionToken(c))
}
