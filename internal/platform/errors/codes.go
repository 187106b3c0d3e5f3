// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeNotFound           Code = "NOT_FOUND"

	// Warehouse reload errors
	CodeReloadFailed           Code = "RELOAD_FAILED"
	CodeCalendarInvalidHorizon Code = "CALENDAR_INVALID_HORIZON"

	// Forecast input errors
	CodeFilterInvalid         Code = "FILTER_INVALID"
	CodeSampleEmpty           Code = "SAMPLE_EMPTY"
	CodePercentileOutOfRange  Code = "PERCENTILE_OUT_OF_RANGE"
	CodeModelNotTrained       Code = "MODEL_NOT_TRAINED"
	CodeModelRecordCorrupt    Code = "MODEL_RECORD_CORRUPT"

	// Legitimate empty result sets, distinct from validation failures so
	// callers can render "try different filters" instead of a system error.
	CodeNoData Code = "NO_DATA"

	// Auth errors
	CodeUnauthorized Code = "UNAUTHORIZED"
)

// HTTPStatus maps an error code to the HTTP status the forecast API returns.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeFilterInvalid, CodeSampleEmpty, CodePercentileOutOfRange, CodeCalendarInvalidHorizon:
		return http.StatusBadRequest
	case CodeNoData, CodeNotFound:
		return http.StatusNotFound
	case CodeModelNotTrained:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
