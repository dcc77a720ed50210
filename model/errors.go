package model

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamHTTPError is returned when the Github GraphQL endpoint answers
// with a non-success transport status. It carries the status code and the
// response body text for debugging
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("github graphql request failed with status %d: %s", e.StatusCode, e.Body)
}

// UpstreamGraphQLError is returned when the response is transport-level
// successful but carries a non-empty errors array. Only the first message
// is kept
type UpstreamGraphQLError struct {
	Message string
}

func (e *UpstreamGraphQLError) Error() string {
	return e.Message
}

// UserNotFoundError is returned when the response has no error array but the
// user field is null
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("github user %q not found", e.Username)
}

// RateLimitError is returned when the local rate limiter has no budget left
// for another outbound request
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "github rate limit reached"
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAPIError converts an internal error into the error payload exposed on
// the API. The error kind is preserved as a code so clients can react
// without parsing message text
func NewAPIError(errReason error) APIError {
	var httpErr *UpstreamHTTPError
	var gqlErr *UpstreamGraphQLError
	var notFoundErr *UserNotFoundError
	var rateLimitErr *RateLimitError

	switch {
	case errors.As(errReason, &notFoundErr):
		return APIError{
			Code:    "USER_NOT_FOUND",
			Message: notFoundErr.Error(),
		}

	case errors.As(errReason, &rateLimitErr):
		return APIError{
			Code:    "RATE_LIMIT_REACHED",
			Message: "github rate limit reached. consider using a token to increase the limit or wait few minutes and try again",
		}

	case errors.As(errReason, &gqlErr):
		return APIError{
			Code:    "UPSTREAM_GRAPHQL_ERROR",
			Message: gqlErr.Message,
		}

	case errors.As(errReason, &httpErr):
		return APIError{
			Code:    "UPSTREAM_HTTP_ERROR",
			Message: fmt.Sprintf("github answered with status %d", httpErr.StatusCode),
		}

	default:
		return APIError{
			Code:    "GENERIC_ERROR",
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}
}

// HTTPStatusForError maps an internal error to the response status code
func HTTPStatusForError(errReason error) int {
	var httpErr *UpstreamHTTPError
	var gqlErr *UpstreamGraphQLError
	var notFoundErr *UserNotFoundError
	var rateLimitErr *RateLimitError

	switch {
	case errors.As(errReason, &notFoundErr):
		return http.StatusNotFound
	case errors.As(errReason, &rateLimitErr):
		return http.StatusTooManyRequests
	case errors.As(errReason, &gqlErr), errors.As(errReason, &httpErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
