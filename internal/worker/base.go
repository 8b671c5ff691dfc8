package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BaseWorker - общее состояние потребителя стрима: настройки, остановка,
// счётчик неудачных batch для Health
type BaseWorker struct {
	name     string
	settings Settings
	logger   *zap.Logger

	stopChan chan struct{}

	mu        sync.Mutex
	stopped   bool
	failures  int
	lastErr   error
	lastBatch time.Time
}

// NewBaseWorker создает BaseWorker; нулевые поля settings берутся из DefaultSettings
func NewBaseWorker(name string, settings Settings, logger *zap.Logger) *BaseWorker {
	settings = settings.withDefaults()
	return &BaseWorker{
		name:     name,
		settings: settings,
		logger: logger.With(
			zap.String("worker", name),
			zap.String("stream", settings.Stream),
			zap.String("consumer_group", settings.ConsumerGroup),
		),
		stopChan: make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Settings возвращает итоговые настройки
func (w *BaseWorker) Settings() Settings {
	return w.settings
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.settings.ConsumerGroup
}

// Logger возвращает логгер с полями воркера
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// Stop останавливает воркер; повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.logger.Info("Stopping worker")
	close(w.stopChan)
	w.stopped = true

	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// RecordBatch учитывает результат чтения batch. Успех сбрасывает счётчик ошибок.
func (w *BaseWorker) RecordBatch(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastBatch = time.Now()
	if err != nil {
		w.failures++
		w.lastErr = err
		return
	}
	w.failures = 0
	w.lastErr = nil
}

// Health - ошибка, если воркер остановлен или MaxFailures batch подряд упали
func (w *BaseWorker) Health() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return fmt.Errorf("worker %s is stopped", w.name)
	}
	if w.failures >= w.settings.MaxFailures {
		return fmt.Errorf("worker %s: %d consecutive batch failures: %w", w.name, w.failures, w.lastErr)
	}
	return nil
}

// RetryDelay - пауза перед попыткой attempt (с 1)
func (w *BaseWorker) RetryDelay(attempt int) time.Duration {
	return w.settings.RetryBackoff * time.Duration(attempt)
}

// Sleep ждёт d; false, если воркер остановлен или контекст отменён
func (w *BaseWorker) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}
