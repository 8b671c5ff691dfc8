package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidZoom = New(
		"INVALID_ZOOM",
		"Invalid zoom level: must be between 0 and 19",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// Ошибки построения сетки стоимостей
var (
	ErrUnclassifiedColor = New(
		"UNCLASSIFIED_COLOR",
		"Pixel color is not registered in the color cost table",
		http.StatusUnprocessableEntity,
	)

	ErrEmptyCell = New(
		"EMPTY_CELL",
		"Cell has no classifiable pixels",
		http.StatusUnprocessableEntity,
	)

	ErrDegenerateGrid = New(
		"DEGENERATE_GRID",
		"Grid dimension rounds to zero",
		http.StatusUnprocessableEntity,
	)

	ErrRenderFailure = New(
		"RENDER_FAILURE",
		"Map image rendering failed",
		http.StatusBadGateway,
	)

	ErrLookupFailure = New(
		"LOOKUP_FAILURE",
		"Connection point lookup failed",
		http.StatusBadGateway,
	)

	ErrConnectionPointNotFound = New(
		"CONNECTION_POINT_NOT_FOUND",
		"No tower or substation found within the maximum radius",
		http.StatusNotFound,
	)

	ErrIndexOutOfRange = New(
		"INDEX_OUT_OF_RANGE",
		"Computed cell index falls outside grid bounds",
		http.StatusInternalServerError,
	)
)
