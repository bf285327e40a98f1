package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaushala-net/gaushala/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: domain.KindInvalidInput.String()})
}

// StatusOf maps an outcome kind to the HTTP status the UI layer expects.
func StatusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindDuplicate:
		return http.StatusConflict
	case domain.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindValidationRejected:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a user facing outcome.
func Error(c echo.Context, err error) error {
	ctx := c.Request().Context()
	kind := domain.KindOf(err)
	status := StatusOf(kind)

	if status >= http.StatusInternalServerError {
		trace.SpanFromContext(ctx).RecordError(err)
		slog.ErrorContext(
			ctx, "request failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
	}

	msg := err.Error()
	if kind == domain.KindPersistenceFailure || kind == domain.KindUnknown {
		// storage details stay in the log
		msg = "something went wrong, please try again"
	}

	return c.JSON(status, errorResponse{
		Error:     msg,
		Kind:      kind.String(),
		Retryable: domain.Retryable(err),
	})
}
