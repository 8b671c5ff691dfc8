package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamGridBuild = "stream:grid:build"
	StreamGridDone  = "stream:grid:done"
)

// GridBuildEvent - входящее событие на построение сетки.
// Если End не задан, точка подключения ищется через lookup.
type GridBuildEvent struct {
	RequestID      uuid.UUID `json:"request_id"`
	Start          GeoPoint  `json:"start"`
	End            *GeoPoint `json:"end,omitempty"`
	ZoomLevel      *int      `json:"zoom_level,omitempty"`
	CellSizeMeters float64   `json:"cell_size_m,omitempty"`
}

// GridDoneEvent - результат построения сетки
type GridDoneEvent struct {
	RequestID       uuid.UUID        `json:"request_id"`
	Result          *GridResult      `json:"result,omitempty"`
	ConnectionPoint *ConnectionPoint `json:"connection_point,omitempty"`
	ErrorCode       string           `json:"error_code,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
