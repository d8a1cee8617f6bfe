package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/models"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token() (string, error) { return "", errors.New("disk gone") }

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := New(server.URL+"/api", time.Second, tokens)
	require.NoError(t, err)
	return c
}

func TestClient_GetDecodesDataAndPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vehicles", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"make":"Volvo","licensePlate":"AB-123"}],"pagination":{"page":2,"limit":10,"total":11,"totalPages":2}}`))
	}, staticToken("tok-123"))

	var vehicles []models.Vehicle
	page, err := c.Get(context.Background(), "/vehicles", models.ListParams{Page: 2}.Values(), &vehicles)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Volvo", vehicles[0].Make)
	assert.Equal(t, "AB-123", vehicles[0].LicensePlate)
	require.NotNil(t, page)
	assert.Equal(t, int64(11), page.Total)
}

func TestClient_NoTokenSendsNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"ok":true}}`))
	}, staticToken(""))

	var out map[string]bool
	_, err := c.Get(context.Background(), "/health", nil, &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])
}

func TestClient_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"trip not found"}`))
	}, nil)

	var trip models.Trip
	_, err := c.Get(context.Background(), "/trips/abc", nil, &trip)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "trip not found", MessageOf(err))
}

func TestClient_ErrorWithoutBodyUsesStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, nil)

	err := c.Delete(context.Background(), "/vehicles/1")
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Equal(t, "Forbidden", MessageOf(err))
}

func TestClient_MalformedSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}, nil)

	var out models.User
	_, err := c.Get(context.Background(), "/auth/me", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestClient_MissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}, nil)

	var out models.User
	_, err := c.Get(context.Background(), "/auth/me", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing data")
}

func TestClient_PostSendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"token":"t","user":{"email":"a@b.com","role":"admin"}}}`))
	}, nil)

	var resp models.LoginResponse
	err := c.Post(context.Background(), "/auth/login", models.LoginRequest{Email: "a@b.com", Password: "x"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestClient_NetworkError(t *testing.T) {
	c, err := New("http://127.0.0.1:1/api", 200*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/trips", nil, &[]models.Trip{})
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
	assert.Contains(t, MessageOf(err), "network error")
}

func TestClient_TokenSourceFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	}, failingToken{})

	_, err := c.Get(context.Background(), "/trips", nil, &[]models.Trip{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
