// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package esi

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNoToken is returned by endpoints that need a bearer token when the
// client has none.
var ErrNoToken = errors.New("access token not set")

// APIError is any failed ESI request. It is retryable when the transport
// timed out or ESI answered with a gateway error.
type APIError struct {
	// Operation names the request, e.g. "get_station 60003760".
	Operation  string
	StatusCode int
	// Message is the "error" field of the ESI response body, when present.
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("could not perform request to ESI (%s): %v", e.Operation, e.Err)
	case e.Message != "":
		return fmt.Sprintf("could not perform request to ESI (%s): %d %s", e.Operation, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("could not perform request to ESI (%s): %d %s",
			e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request might succeed.
func (e *APIError) Retryable() bool {
	if e.Err != nil {
		var ne net.Error
		return errors.As(e.Err, &ne) && ne.Timeout()
	}
	switch e.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
