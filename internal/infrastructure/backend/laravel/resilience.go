package laravel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func classifyBackendError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.Verdict{Retryable: true, RecordFailure: true}
		}
		return resilience.Verdict{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	return resilience.Verdict{RecordFailure: true}
}

// wrapBackendError maps transport failures onto the domain error kinds the
// HTTP layer knows how to translate into status codes.
func wrapBackendError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return domain.WrapError(domain.ErrNotFound, operation, err)
		case statusErr.StatusCode == http.StatusUnprocessableEntity || statusErr.StatusCode == http.StatusBadRequest:
			return domain.WrapError(domain.ErrInvalidInput, operation, err)
		case statusErr.StatusCode >= 500:
			return domain.WrapError(domain.ErrUnavailable, operation, err)
		}
		return err
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrUnavailable, operation, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.WrapError(domain.ErrUnavailable, operation, err)
	}
	return err
}
