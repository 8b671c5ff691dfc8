package grid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/worker"
)

// WorkerName - имя воркера в логах и /health
const WorkerName = "grid-build"

// Planner строит сетку, при необходимости находя точку подключения
type Planner interface {
	Plan(
		ctx context.Context,
		start domain.GeoPoint,
		end *domain.GeoPoint,
		gridOpts domain.GridOptions,
		lookupOpts domain.LookupOptions,
	) (*domain.GridResult, *domain.ConnectionPoint, error)
}

// GridBuildWorker обрабатывает события stream:grid:build
type GridBuildWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	planner      Planner
	gridDefaults domain.GridOptions
	lookup       domain.LookupOptions
}

// NewGridBuildWorker создает GridBuildWorker. Пустой settings.Stream
// означает domain.StreamGridBuild.
func NewGridBuildWorker(
	streamRepo repository.StreamRepository,
	planner Planner,
	gridDefaults domain.GridOptions,
	lookup domain.LookupOptions,
	settings worker.Settings,
	logger *zap.Logger,
) *GridBuildWorker {
	if settings.Stream == "" {
		settings.Stream = domain.StreamGridBuild
	}

	return &GridBuildWorker{
		BaseWorker:   worker.NewBaseWorker(WorkerName, settings, logger),
		streamRepo:   streamRepo,
		planner:      planner,
		gridDefaults: gridDefaults,
		lookup:       lookup,
	}
}

// Start запускает воркер
func (w *GridBuildWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	settings := w.Settings()
	logger.Info("Starting GridBuildWorker",
		zap.String("consumer_name", settings.ConsumerName),
		zap.Int("max_batch_size", settings.BatchSize),
		zap.Int("max_retries", settings.MaxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, settings.Stream, settings.ConsumerGroup); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.Sleep(ctx, settings.ErrorSleep)
				continue
			}

			if processed == 0 {
				w.Sleep(ctx, settings.IdleSleep)
			}
		}
	}
}

// ProcessBatch читает batch событий, строит сетки и публикует результаты.
// Возвращает количество прочитанных сообщений; ошибки чтения учитываются в Health.
func (w *GridBuildWorker) ProcessBatch(ctx context.Context) (int, error) {
	processed, err := w.processBatch(ctx)
	if ctx.Err() == nil {
		w.RecordBatch(err)
	}
	return processed, err
}

func (w *GridBuildWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()
	settings := w.Settings()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		settings.Stream,
		settings.ConsumerGroup,
		settings.ConsumerName,
		settings.BatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	handled := make([]string, 0, len(messages))
	for _, msg := range messages {
		var event domain.GridBuildEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			handled = append(handled, msg.ID)
			continue
		}

		done := w.handle(ctx, &event)
		if ctx.Err() != nil {
			// без ACK: сообщение останется в pending и будет прочитано заново
			break
		}

		if err := w.streamRepo.PublishToStream(ctx, domain.StreamGridDone, done); err != nil {
			logger.Error("Failed to publish done event",
				zap.String("request_id", event.RequestID.String()),
				zap.Error(err))
			continue
		}
		handled = append(handled, msg.ID)
	}

	if err := w.streamRepo.AckMessages(ctx, settings.Stream, settings.ConsumerGroup, handled); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Info("Batch processed", zap.Int("acked", len(handled)))
	return len(messages), nil
}

func (w *GridBuildWorker) handle(ctx context.Context, event *domain.GridBuildEvent) *domain.GridDoneEvent {
	opts := w.gridDefaults
	if event.ZoomLevel != nil {
		opts.ZoomLevel = *event.ZoomLevel
	}
	if event.CellSizeMeters > 0 {
		opts.CellSizeMeters = event.CellSizeMeters
	}

	var (
		result *domain.GridResult
		point  *domain.ConnectionPoint
		err    error
	)
	for attempt := 0; attempt <= w.Settings().MaxRetries; attempt++ {
		if attempt > 0 {
			w.Logger().Warn("Retrying grid build",
				zap.String("request_id", event.RequestID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if !w.Sleep(ctx, w.RetryDelay(attempt)) {
				break
			}
		}

		result, point, err = w.planner.Plan(ctx, event.Start, event.End, opts, w.lookup)
		if err == nil || !isTransient(err) {
			break
		}
	}

	done := &domain.GridDoneEvent{
		RequestID:       event.RequestID,
		Result:          result,
		ConnectionPoint: point,
	}
	if err != nil {
		appErr := pkgerrors.AsAppError(err)
		done.ErrorCode = appErr.Code
		done.Error = err.Error()
	}
	return done
}

// isTransient - ошибки внешних сервисов, которые имеет смысл повторить
func isTransient(err error) bool {
	return errors.Is(err, pkgerrors.ErrRenderFailure) ||
		errors.Is(err, pkgerrors.ErrLookupFailure) ||
		errors.Is(err, pkgerrors.ErrDatabaseError)
}
