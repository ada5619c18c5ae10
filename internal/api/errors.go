package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Category string

const (
	CategoryUnreachable     Category = "unreachable"
	CategoryBadRequest      Category = "bad_request"
	CategoryUnauthenticated Category = "unauthenticated"
	CategoryForbidden       Category = "forbidden"
	CategoryNotFound        Category = "not_found"
	CategoryConflict        Category = "conflict"
	CategoryServer          Category = "server_error"
	CategoryUnavailable     Category = "unavailable"
)

// Error is the normalized form of every rejected call. Status is 0 for
// requests that never reached the server.
type Error struct {
	Category Category
	Message  string
	Status   int
}

func (e *Error) Error() string {
	return e.Message
}

// IsCategory reports whether err is a gateway error of the given category.
func IsCategory(err error, category Category) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Category == category
}

func categoryForStatus(status int) Category {
	switch status {
	case http.StatusUnauthorized:
		return CategoryUnauthenticated
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusConflict:
		return CategoryConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return CategoryUnavailable
	}
	if status >= 500 {
		return CategoryServer
	}
	return CategoryBadRequest
}

func defaultMessage(category Category) string {
	switch category {
	case CategoryUnauthenticated:
		return "authentication required"
	case CategoryForbidden:
		return "permission denied"
	case CategoryNotFound:
		return "not found"
	case CategoryConflict:
		return "conflict with existing resource"
	case CategoryUnavailable:
		return "service temporarily unavailable"
	case CategoryServer:
		return "server error"
	default:
		return "request rejected"
	}
}

// normalize maps a non-2xx response to an Error, preferring the server's
// detail message when one is present.
func normalize(resp *http.Response) *Error {
	category := categoryForStatus(resp.StatusCode)
	message := defaultMessage(category)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
			message = payload.Detail
		}
	}

	return &Error{
		Category: category,
		Message:  message,
		Status:   resp.StatusCode,
	}
}

// unreachable covers DNS and connect failures plus client-side timeouts:
// anything where no HTTP status exists to map from.
func unreachable(err error) *Error {
	return &Error{
		Category: CategoryUnreachable,
		Message:  fmt.Sprintf("cannot reach server: %v", err),
	}
}
