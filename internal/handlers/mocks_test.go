package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/middleware"
	"github.com/ukydev/aivodrive/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MockStore is a mock implementation of db.Store
type MockStore[T any] struct {
	mock.Mock
}

func (m *MockStore[T]) Find(ctx context.Context, q db.Query) ([]T, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockStore[T]) Insert(ctx context.Context, doc T) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockStore[T]) Update(ctx context.Context, id string, doc T) error {
	args := m.Called(ctx, id, doc)
	return args.Error(0)
}

func (m *MockStore[T]) UpdateIf(ctx context.Context, id string, cond bson.M, doc T) error {
	args := m.Called(ctx, id, cond, doc)
	return args.Error(0)
}

func (m *MockStore[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore[T]) DeleteIf(ctx context.Context, id string, cond bson.M) error {
	args := m.Called(ctx, id, cond)
	return args.Error(0)
}

func (m *MockStore[T]) CountByStatus(ctx context.Context, filter bson.M) (models.Stats, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(models.Stats), args.Error(1)
}

func (m *MockStore[T]) CountBy(ctx context.Context, field string, filter bson.M) (map[string]int64, error) {
	args := m.Called(ctx, field, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStore[T]) Sum(ctx context.Context, field string, filter bson.M) (float64, error) {
	args := m.Called(ctx, field, filter)
	return args.Get(0).(float64), args.Error(1)
}

// MockAlertCollection adds the alert read-state operations
type MockAlertCollection struct {
	MockStore[models.Alert]
}

func (m *MockAlertCollection) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertCollection) MarkAllRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertCollection) CountUnread(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher captures published alerts.
type recordingPublisher struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (p *recordingPublisher) Publish(_ context.Context, a models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return nil
}

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() Clock { return func() time.Time { return testNow } }

var (
	adminClaims      = &models.Claims{UserID: "u-admin", Role: models.RoleAdmin}
	dispatcherClaims = &models.Claims{UserID: "u-disp", Role: models.RoleDispatcher}
	driverClaims     = &models.Claims{UserID: "u-drv", Role: models.RoleDriver, DriverID: "d-1"}
)

// newRequest builds a request with optional JSON body, claims and {id} param.
func newRequest(t *testing.T, method, target string, body interface{}, claims *models.Claims, id string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := req.Context()
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if claims != nil {
		ctx = middleware.WithClaims(ctx, claims)
	}
	return req.WithContext(ctx)
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
	Message    string             `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}
