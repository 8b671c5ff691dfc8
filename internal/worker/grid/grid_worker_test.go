package grid_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/worker"
	"github.com/routegrid-microservice/internal/worker/grid"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockPlanner is a mock of Planner
type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Plan(ctx context.Context, start domain.GeoPoint, end *domain.GeoPoint, gridOpts domain.GridOptions, lookupOpts domain.LookupOptions) (*domain.GridResult, *domain.ConnectionPoint, error) {
	args := m.Called(ctx, start, end, gridOpts, lookupOpts)
	var result *domain.GridResult
	if args.Get(0) != nil {
		result = args.Get(0).(*domain.GridResult)
	}
	var point *domain.ConnectionPoint
	if args.Get(1) != nil {
		point = args.Get(1).(*domain.ConnectionPoint)
	}
	return result, point, args.Error(2)
}

const testGroup = "grid-build-workers"

var plantStart = domain.GeoPoint{Lat: 6.7, Lon: 80.06}

const testBackoff = 20 * time.Millisecond

func newWorker(stream *MockStreamRepository, planner *MockPlanner, retries int) *grid.GridBuildWorker {
	settings := worker.DefaultSettings("", testGroup)
	settings.ConsumerName = "test-consumer"
	settings.MaxRetries = retries
	settings.RetryBackoff = testBackoff
	settings.IdleSleep = 5 * time.Millisecond
	settings.ErrorSleep = 5 * time.Millisecond

	return grid.NewGridBuildWorker(
		stream, planner,
		domain.DefaultGridOptions(), domain.DefaultLookupOptions(),
		settings, zap.NewNop(),
	)
}

func message(t *testing.T, id string, event domain.GridBuildEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func TestGridBuildWorker_Name(t *testing.T) {
	w := newWorker(&MockStreamRepository{}, &MockPlanner{}, 0)
	assert.Equal(t, grid.WorkerName, w.Name())
	assert.Equal(t, testGroup, w.ConsumerGroup())

	settings := w.Settings()
	assert.Equal(t, domain.StreamGridBuild, settings.Stream)
	assert.Equal(t, "test-consumer", settings.ConsumerName)
	assert.Equal(t, 5, settings.BatchSize)
}

func TestGridBuildWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		stream := &MockStreamRepository{}
		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return([]domain.StreamMessage{}, nil)

		processed, err := newWorker(stream, &MockPlanner{}, 0).ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, processed)
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("builds grid, publishes result and acks", func(t *testing.T) {
		requestID := uuid.New()
		zoom := 15
		stream := &MockStreamRepository{}
		planner := &MockPlanner{}

		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return([]domain.StreamMessage{
				message(t, "1-0", domain.GridBuildEvent{RequestID: requestID, Start: plantStart, ZoomLevel: &zoom}),
				{ID: "2-0", Data: "not json"},
			}, nil)

		expectedOpts := domain.DefaultGridOptions()
		expectedOpts.ZoomLevel = 15
		result := &domain.GridResult{ZoomLevel: 15}
		tower := &domain.ConnectionPoint{OSMID: 7, Kind: domain.PowerTower}
		planner.On("Plan", ctx, plantStart, (*domain.GeoPoint)(nil), expectedOpts, domain.DefaultLookupOptions()).
			Return(result, tower, nil)

		stream.On("PublishToStream", ctx, domain.StreamGridDone, mock.MatchedBy(func(e *domain.GridDoneEvent) bool {
			return e.RequestID == requestID && e.Result == result && e.ConnectionPoint == tower && e.ErrorCode == ""
		})).Return(nil)
		stream.On("AckMessages", ctx, domain.StreamGridBuild, testGroup, []string{"1-0", "2-0"}).Return(nil)

		processed, err := newWorker(stream, planner, 0).ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, processed)
		stream.AssertExpectations(t)
		planner.AssertExpectations(t)
	})

	t.Run("domain error is published with its code", func(t *testing.T) {
		stream := &MockStreamRepository{}
		planner := &MockPlanner{}

		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return([]domain.StreamMessage{message(t, "1-0", domain.GridBuildEvent{RequestID: uuid.New(), Start: plantStart})}, nil)
		planner.On("Plan", ctx, plantStart, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, pkgerrors.ErrConnectionPointNotFound)
		stream.On("PublishToStream", ctx, domain.StreamGridDone, mock.MatchedBy(func(e *domain.GridDoneEvent) bool {
			return e.ErrorCode == "CONNECTION_POINT_NOT_FOUND" && e.Result == nil
		})).Return(nil)
		stream.On("AckMessages", ctx, domain.StreamGridBuild, testGroup, []string{"1-0"}).Return(nil)

		_, err := newWorker(stream, planner, 3).ProcessBatch(ctx)
		require.NoError(t, err)
		planner.AssertNumberOfCalls(t, "Plan", 1)
		stream.AssertExpectations(t)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		stream := &MockStreamRepository{}
		planner := &MockPlanner{}
		result := &domain.GridResult{}

		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return([]domain.StreamMessage{message(t, "1-0", domain.GridBuildEvent{RequestID: uuid.New(), Start: plantStart})}, nil)
		planner.On("Plan", ctx, plantStart, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, pkgerrors.Wrap(pkgerrors.ErrRenderFailure, errors.New("timeout"))).Once()
		planner.On("Plan", ctx, plantStart, mock.Anything, mock.Anything, mock.Anything).
			Return(result, nil, nil).Once()
		stream.On("PublishToStream", ctx, domain.StreamGridDone, mock.MatchedBy(func(e *domain.GridDoneEvent) bool {
			return e.Result == result && e.ErrorCode == ""
		})).Return(nil)
		stream.On("AckMessages", ctx, domain.StreamGridBuild, testGroup, []string{"1-0"}).Return(nil)

		start := time.Now()
		_, err := newWorker(stream, planner, 1).ProcessBatch(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), testBackoff)
		planner.AssertNumberOfCalls(t, "Plan", 2)
	})

	t.Run("unpublished result is not acked", func(t *testing.T) {
		stream := &MockStreamRepository{}
		planner := &MockPlanner{}

		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return([]domain.StreamMessage{message(t, "1-0", domain.GridBuildEvent{RequestID: uuid.New(), Start: plantStart})}, nil)
		planner.On("Plan", ctx, plantStart, mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.GridResult{}, nil, nil)
		stream.On("PublishToStream", ctx, domain.StreamGridDone, mock.Anything).Return(errors.New("redis down"))
		stream.On("AckMessages", ctx, domain.StreamGridBuild, testGroup, []string{}).Return(nil)

		_, err := newWorker(stream, planner, 0).ProcessBatch(ctx)
		require.NoError(t, err)
		stream.AssertExpectations(t)
	})

	t.Run("consume error", func(t *testing.T) {
		stream := &MockStreamRepository{}
		stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, mock.Anything, 5).
			Return(nil, errors.New("connection refused"))

		_, err := newWorker(stream, &MockPlanner{}, 0).ProcessBatch(ctx)
		assert.Error(t, err)
	})
}

func TestGridBuildWorker_Health(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, "test-consumer", 5).
		Return(nil, errors.New("connection refused")).Times(3)
	stream.On("ConsumeBatch", ctx, domain.StreamGridBuild, testGroup, "test-consumer", 5).
		Return([]domain.StreamMessage{}, nil).Once()

	w := newWorker(stream, &MockPlanner{}, 0)
	require.NoError(t, w.Health())

	for i := 0; i < 2; i++ {
		_, err := w.ProcessBatch(ctx)
		require.Error(t, err)
	}
	assert.NoError(t, w.Health(), "below the failure threshold")

	_, err := w.ProcessBatch(ctx)
	require.Error(t, err)
	err = w.Health()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 consecutive batch failures")
	assert.Contains(t, err.Error(), "connection refused")

	_, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.NoError(t, w.Health())
	stream.AssertExpectations(t)
}

func TestGridBuildWorker_StartStop(t *testing.T) {
	stream := &MockStreamRepository{}
	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamGridBuild, testGroup).Return(nil)
	stream.On("ConsumeBatch", mock.Anything, domain.StreamGridBuild, testGroup, mock.Anything, 5).
		Return([]domain.StreamMessage{}, nil)

	w := newWorker(stream, &MockPlanner{}, 0)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
