package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
)

// classifyUpstream converts an infrastructure error into a structured
// domain error. Errors that are already structured pass through; expired
// deadlines become timeout errors; everything else is an upstream error.
func classifyUpstream(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	if isTimeout(err) {
		return domain.Timeout(message, err)
	}
	return domain.Upstream(message, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
