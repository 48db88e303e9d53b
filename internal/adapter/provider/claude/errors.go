package claude

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/hieunguyen/vocabdeck/internal/provider"
)

// classify maps an Anthropic SDK / transport error onto the provider
// taxonomy. The dispatcher retries recoverable kinds on the next
// credential and aborts on the rest.
func classify(err error) *provider.Error {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return perr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return provider.NewError(provider.KindTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		// Cancellation is surfaced as-is by the dispatcher; transient here
		// just keeps the wrapper consistent for late arrivals.
		return provider.NewError(provider.KindTransient, err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			if isQuotaMessage(err.Error()) {
				return provider.NewError(provider.KindQuota, err)
			}
			return provider.NewError(provider.KindRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return provider.NewError(provider.KindAuth, err)
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return provider.NewError(provider.KindBadRequest, err)
		default:
			if apiErr.StatusCode >= 500 {
				return provider.NewError(provider.KindTransient, err)
			}
			return provider.NewError(provider.KindBadRequest, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return provider.NewError(provider.KindTimeout, err)
		}
		return provider.NewError(provider.KindTransient, err)
	}

	return provider.NewError(provider.KindTransient, err)
}

// isQuotaMessage distinguishes exhausted-credit 429s from momentary
// rate limiting by the error text.
func isQuotaMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "credit") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "billing")
}
