package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/service"
	"github.com/cwrk-planet/meeting-service/pkg/logger"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// errBadRequest marks request decoding and validation failures.
var errBadRequest = errors.New("bad request")

func mapErr(err error) (int, string) {
	var dirErr *domain.DirectoryError
	switch {
	case errors.As(err, &dirErr):
		return http.StatusBadRequest, dirErr.Error()
	case errors.Is(err, service.ErrChairsRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrMeetingNotFound):
		return http.StatusNotFound, "Meeting not found."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrDuplicateEntry),
		errors.Is(err, domain.ErrEmptyQueue),
		errors.Is(err, domain.ErrInvariantViolation),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeErr(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := mapErr(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(ctx).ErrorContext(ctx, "request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Message: msg})
}
