package screens

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockTripAPI struct {
	mock.Mock
}

func (m *MockTripAPI) trip(args mock.Arguments) (*models.Trip, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripAPI) Get(ctx context.Context, id string) (*models.Trip, error) {
	return m.trip(m.Called(ctx, id))
}

func (m *MockTripAPI) Start(ctx context.Context, id string) (*models.Trip, error) {
	return m.trip(m.Called(ctx, id))
}

func (m *MockTripAPI) Complete(ctx context.Context, id string) (*models.Trip, error) {
	return m.trip(m.Called(ctx, id))
}

func (m *MockTripAPI) Cancel(ctx context.Context, id, reason string) (*models.Trip, error) {
	return m.trip(m.Called(ctx, id, reason))
}

func (m *MockTripAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockMaintenanceAPI struct {
	mock.Mock
}

func (m *MockMaintenanceAPI) record(args mock.Arguments) (*models.Maintenance, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceAPI) Get(ctx context.Context, id string) (*models.Maintenance, error) {
	return m.record(m.Called(ctx, id))
}

func (m *MockMaintenanceAPI) Start(ctx context.Context, id string) (*models.Maintenance, error) {
	return m.record(m.Called(ctx, id))
}

func (m *MockMaintenanceAPI) Complete(ctx context.Context, id, notes string) (*models.Maintenance, error) {
	return m.record(m.Called(ctx, id, notes))
}

func (m *MockMaintenanceAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type countingHandler struct {
	errs []error
}

func (h *countingHandler) HandleError(err error) bool {
	h.errs = append(h.errs, err)
	return apiclient.IsUnauthorized(err)
}

var (
	dispatcher = lifecycle.Actor{UserID: "u1", Role: models.RoleDispatcher}
	admin      = lifecycle.Actor{UserID: "u0", Role: models.RoleAdmin}
)

func loadedTrip(t *testing.T, api *MockTripAPI, actor lifecycle.Actor, trip models.Trip) *TripDetail {
	t.Helper()
	api.On("Get", mock.Anything, trip.ID.Hex()).Return(&trip, nil).Once()
	s := NewTripDetail(api, actor, nil)
	require.NoError(t, s.Load(context.Background(), trip.ID.Hex()))
	return s
}

func TestTripDetail_CancelRequiresReason(t *testing.T) {
	api := &MockTripAPI{}
	trip := models.Trip{ID: primitive.NewObjectID(), Status: models.TripScheduled}
	s := loadedTrip(t, api, dispatcher, trip)

	err := s.Cancel(context.Background(), "   ")
	assert.ErrorIs(t, err, lifecycle.ErrReasonRequired)
	api.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)

	got, _ := s.Trip()
	assert.Equal(t, models.TripScheduled, got.Status)

	cancelled := trip
	cancelled.Status = models.TripCancelled
	cancelled.CancellationReason = "vehicle broke down"
	api.On("Cancel", mock.Anything, trip.ID.Hex(), "vehicle broke down").Return(&cancelled, nil)

	require.NoError(t, s.Cancel(context.Background(), "vehicle broke down"))
	got, _ = s.Trip()
	assert.Equal(t, models.TripCancelled, got.Status)
	assert.Empty(t, s.Actions())
	assert.False(t, s.CanEdit())
	assert.True(t, s.CanDelete())
}

func TestTripDetail_FailedTransitionKeepsTrip(t *testing.T) {
	api := &MockTripAPI{}
	trip := models.Trip{ID: primitive.NewObjectID(), Status: models.TripScheduled}
	s := loadedTrip(t, api, dispatcher, trip)

	api.On("Start", mock.Anything, trip.ID.Hex()).Return(nil, &apiclient.Error{Status: 409, Message: "vehicle busy"})

	err := s.Start(context.Background())
	assert.EqualError(t, err, "vehicle busy")
	got, _ := s.Trip()
	assert.Equal(t, models.TripScheduled, got.Status, "no optimistic transition")
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionStart, lifecycle.ActionCancel}, s.Actions())
}

func TestTripDetail_CloseDropsInflightAction(t *testing.T) {
	api := &MockTripAPI{}
	trip := models.Trip{ID: primitive.NewObjectID(), Status: models.TripScheduled}
	s := loadedTrip(t, api, dispatcher, trip)

	started := trip
	started.Status = models.TripInProgress
	calling := make(chan struct{})
	api.On("Start", mock.Anything, trip.ID.Hex()).Run(func(args mock.Arguments) {
		close(calling)
		<-args.Get(0).(context.Context).Done()
	}).Return(&started, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Start(context.Background()) }()
	<-calling
	s.Close()

	assert.ErrorIs(t, <-errc, ErrClosed)
	got, _ := s.Trip()
	assert.Equal(t, models.TripScheduled, got.Status)
	assert.ErrorIs(t, s.Load(context.Background(), trip.ID.Hex()), ErrClosed)
	assert.ErrorIs(t, s.Cancel(context.Background(), "late"), ErrClosed)
	api.AssertNumberOfCalls(t, "Get", 1)
	s.Close()
}

func TestTripDetail_IllegalActionNeverCallsServer(t *testing.T) {
	api := &MockTripAPI{}
	trip := models.Trip{ID: primitive.NewObjectID(), Status: models.TripCompleted}
	s := loadedTrip(t, api, dispatcher, trip)

	assert.ErrorIs(t, s.Start(context.Background()), lifecycle.ErrTransitionNotAllowed)
	assert.ErrorIs(t, s.Complete(context.Background()), lifecycle.ErrTransitionNotAllowed)
	assert.ErrorIs(t, s.Cancel(context.Background(), "late"), lifecycle.ErrTransitionNotAllowed)
	assert.ErrorIs(t, s.Delete(context.Background()), lifecycle.ErrTransitionNotAllowed)
	api.AssertNumberOfCalls(t, "Get", 1)
	api.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTripDetail_DriverScope(t *testing.T) {
	api := &MockTripAPI{}
	trip := models.Trip{ID: primitive.NewObjectID(), DriverID: "d-1", Status: models.TripScheduled}
	api.On("Get", mock.Anything, trip.ID.Hex()).Return(&trip, nil)

	other := NewTripDetail(api, lifecycle.Actor{Role: models.RoleDriver, DriverID: "d-2"}, nil)
	assert.ErrorIs(t, other.Load(context.Background(), trip.ID.Hex()), lifecycle.ErrForbidden)

	own := NewTripDetail(api, lifecycle.Actor{Role: models.RoleDriver, DriverID: "d-1"}, nil)
	require.NoError(t, own.Load(context.Background(), trip.ID.Hex()))
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionStart}, own.Actions())
	assert.False(t, own.CanEdit())
	assert.False(t, own.CanDelete())
}

func TestTripDetail_NotFoundIsDistinct(t *testing.T) {
	api := &MockTripAPI{}
	api.On("Get", mock.Anything, "missing").Return(nil, &apiclient.Error{Status: 404, Message: "trip not found"})
	api.On("Get", mock.Anything, "broken").Return(nil, &apiclient.Error{Status: 500, Message: "boom"})
	handler := &countingHandler{}

	s := NewTripDetail(api, dispatcher, handler)
	err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Load(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Len(t, handler.errs, 2)

	_, ok := s.Trip()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Start(context.Background()), ErrNotLoaded)
}

func TestMaintenanceDetail_Lifecycle(t *testing.T) {
	api := &MockMaintenanceAPI{}
	id := primitive.NewObjectID()
	scheduled := models.Maintenance{ID: id, Status: models.MaintenanceScheduled, Date: time.Now().Add(48 * time.Hour)}
	api.On("Get", mock.Anything, id.Hex()).Return(&scheduled, nil)

	s := NewMaintenanceDetail(api, admin, nil)
	require.NoError(t, s.Load(context.Background(), id.Hex()))
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionStart}, s.Actions())

	started := scheduled
	started.Status = models.MaintenanceInProgress
	api.On("Start", mock.Anything, id.Hex()).Return(&started, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, models.MaintenanceInProgress, s.Status())
	assert.Equal(t, []lifecycle.Action{lifecycle.ActionComplete}, s.Actions())

	completedAt := time.Now()
	done := started
	done.Status = models.MaintenanceCompleted
	done.CompletionNotes = "Replaced pads"
	done.CompletedAt = &completedAt
	api.On("Complete", mock.Anything, id.Hex(), "Replaced pads").Return(&done, nil)
	require.NoError(t, s.Complete(context.Background(), "Replaced pads"))

	rec, _ := s.Record()
	assert.Equal(t, models.MaintenanceCompleted, rec.Status)
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, "Replaced pads", rec.CompletionNotes)
	assert.Empty(t, s.Actions())
	assert.False(t, s.CanEdit())
	assert.True(t, s.CanDelete())
	assert.Equal(t, lifecycle.DeleteAsymmetry, s.DeleteNote())

	api.On("Delete", mock.Anything, id.Hex()).Return(nil)
	assert.NoError(t, s.Delete(context.Background()))
}

func TestMaintenanceDetail_CloseDropsInflightLoad(t *testing.T) {
	api := &MockMaintenanceAPI{}
	id := primitive.NewObjectID()
	rec := models.Maintenance{ID: id, Status: models.MaintenanceScheduled}
	calling := make(chan struct{})
	api.On("Get", mock.Anything, id.Hex()).Run(func(args mock.Arguments) {
		close(calling)
		<-args.Get(0).(context.Context).Done()
	}).Return(&rec, nil)

	s := NewMaintenanceDetail(api, admin, nil)
	errc := make(chan error, 1)
	go func() { errc <- s.Load(context.Background(), id.Hex()) }()
	<-calling
	s.Close()

	assert.ErrorIs(t, <-errc, ErrClosed)
	_, ok := s.Record()
	assert.False(t, ok)
}

func TestMaintenanceDetail_DispatcherReadOnly(t *testing.T) {
	api := &MockMaintenanceAPI{}
	id := primitive.NewObjectID()
	rec := models.Maintenance{ID: id, Status: models.MaintenanceScheduled, Date: time.Now().Add(-time.Hour)}
	api.On("Get", mock.Anything, id.Hex()).Return(&rec, nil)

	s := NewMaintenanceDetail(api, dispatcher, nil)
	require.NoError(t, s.Load(context.Background(), id.Hex()))

	assert.Equal(t, models.MaintenanceOverdue, s.Status())
	assert.Empty(t, s.Actions())
	assert.ErrorIs(t, s.Start(context.Background()), lifecycle.ErrForbidden)
	assert.ErrorIs(t, s.Delete(context.Background()), lifecycle.ErrForbidden)
	assert.Empty(t, s.DeleteNote())
	api.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

type stubDrivers struct {
	driver *models.Driver
	err    error
}

func (s stubDrivers) Get(ctx context.Context, id string) (*models.Driver, error) {
	return s.driver, s.err
}

type stubTrips struct {
	trips []models.Trip
	err   error
}

func (s stubTrips) List(ctx context.Context, p models.ListParams) (services.Page[models.Trip], error) {
	return services.Page[models.Trip]{Items: s.trips}, s.err
}

func TestLoadDriver_Anomaly(t *testing.T) {
	id := primitive.NewObjectID()
	d := &models.Driver{ID: id, Status: models.DriverOnTrip}

	view, err := LoadDriver(context.Background(), stubDrivers{driver: d}, stubTrips{}, admin, id.Hex(), nil)
	require.NoError(t, err)
	assert.True(t, view.Anomaly)
	assert.True(t, view.CanEdit)

	running := []models.Trip{{DriverID: id.Hex(), Status: models.TripInProgress}}
	view, err = LoadDriver(context.Background(), stubDrivers{driver: d}, stubTrips{trips: running}, dispatcher, id.Hex(), nil)
	require.NoError(t, err)
	assert.False(t, view.Anomaly)
	assert.False(t, view.CanEdit)

	view, err = LoadDriver(context.Background(), stubDrivers{driver: d}, stubTrips{err: errors.New("down")}, admin, id.Hex(), nil)
	require.NoError(t, err)
	assert.False(t, view.Anomaly)
	assert.Error(t, view.TripsErr)

	_, err = LoadDriver(context.Background(), stubDrivers{err: &apiclient.Error{Status: 404}}, stubTrips{}, admin, id.Hex(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
