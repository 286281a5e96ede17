// Package resilience provides the error taxonomy and retry primitives used
// across the analysis pipeline. Failures are classified into kinds so that
// stages can degrade per kind instead of treating every error the same.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindOracleTimeout     Kind = "oracle_timeout"
	KindOracleRateLimited Kind = "oracle_rate_limited"
	KindOracleAuth        Kind = "oracle_auth_error"
	KindMalformedOutput   Kind = "malformed_output"
	KindToolUnavailable   Kind = "tool_unavailable"
	KindConstruction      Kind = "pipeline_construction_failure"
	KindUnknown           Kind = "unknown"
)

// KindError attaches a Kind to an underlying error.
type KindError struct {
	Kind Kind
	Err  error
}

func (e *KindError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// WithKind wraps err with the given kind. A nil err returns nil.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// KindOf returns the kind of err, classifying unwrapped errors by shape:
// context deadlines map to timeouts, auth/429 markers in the message map to
// their oracle kinds. Errors with no recognizable shape are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindOracleTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindOracleTimeout
	}

	// String heuristics for errors surfaced by SDKs that don't expose
	// structured status codes.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") || strings.Contains(msg, "quota"):
		return KindOracleRateLimited
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "authentication") || strings.Contains(msg, "permission"):
		return KindOracleAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return KindOracleTimeout
	}
	return KindUnknown
}

// IsAuth reports whether err is an auth-class oracle failure.
func IsAuth(err error) bool { return KindOf(err) == KindOracleAuth }

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool { return KindOf(err) == KindOracleRateLimited }

// IsTimeout reports whether err is a timeout failure.
func IsTimeout(err error) bool { return KindOf(err) == KindOracleTimeout }

// IsRetryable reports whether a retry has any chance of helping: rate
// limits, timeouts, and transient network faults. Auth and malformed-output
// failures are never retryable here (malformed output has its own one-shot
// strict retry in the metrics stage).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindOracleRateLimited, KindOracleTimeout:
		return true
	case KindOracleAuth, KindMalformedOutput, KindConstruction:
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// KindForHTTPStatus maps an HTTP status code to an error kind.
func KindForHTTPStatus(statusCode int) Kind {
	switch statusCode {
	case 401, 403:
		return KindOracleAuth
	case 429:
		return KindOracleRateLimited
	case 408, 504:
		return KindOracleTimeout
	default:
		return KindUnknown
	}
}
