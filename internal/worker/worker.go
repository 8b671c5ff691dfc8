package worker

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Worker - потребитель Redis Stream, управляемый WorkerManager
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string

	// Health возвращает ошибку, если воркер перестал обрабатывать стрим
	Health() error
}

// Settings - параметры чтения стрима и повторов
type Settings struct {
	Stream        string
	ConsumerGroup string
	// ConsumerName - имя потребителя в группе; пусто - hostname-pid
	ConsumerName string
	BatchSize    int
	// IdleSleep - пауза, если очередь пуста
	IdleSleep time.Duration
	// ErrorSleep - пауза после неудачного чтения
	ErrorSleep time.Duration
	MaxRetries int
	// RetryBackoff умножается на номер попытки
	RetryBackoff time.Duration
	// MaxFailures - столько неудачных batch подряд делают воркер нездоровым
	MaxFailures int
}

// DefaultSettings - настройки по умолчанию для стрима и группы
func DefaultSettings(stream, group string) Settings {
	return Settings{
		Stream:        stream,
		ConsumerGroup: group,
		BatchSize:     5,
		IdleSleep:     100 * time.Millisecond,
		ErrorSleep:    time.Second,
		MaxRetries:    3,
		RetryBackoff:  time.Second,
		MaxFailures:   3,
	}
}

// withDefaults заполняет нулевые поля значениями DefaultSettings
func (s Settings) withDefaults() Settings {
	d := DefaultSettings(s.Stream, s.ConsumerGroup)
	if s.ConsumerName == "" {
		hostname, _ := os.Hostname()
		s.ConsumerName = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}
	if s.BatchSize <= 0 {
		s.BatchSize = d.BatchSize
	}
	if s.IdleSleep <= 0 {
		s.IdleSleep = d.IdleSleep
	}
	if s.ErrorSleep <= 0 {
		s.ErrorSleep = d.ErrorSleep
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = d.RetryBackoff
	}
	if s.MaxFailures <= 0 {
		s.MaxFailures = d.MaxFailures
	}
	return s
}
