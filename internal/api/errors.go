// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the FlowVo chat backend.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed API call for the session layer.
type ErrorKind string

const (
	// KindNetwork: timeout or connection failure before a response arrived.
	KindNetwork ErrorKind = "network"

	// KindAuth: 401-class failure; the caller routes to re-authentication.
	KindAuth ErrorKind = "auth-failure"

	// KindServer: non-2xx response with a body.
	KindServer ErrorKind = "server"
)

// Error variables for common client failures.
var (
	// ErrNotConfigured indicates the base URL or token source is missing.
	ErrNotConfigured = errors.New("flowvo API not configured")

	// ErrAuthFailed indicates the bearer credential was rejected.
	ErrAuthFailed = errors.New("authentication failed")
)

// Error represents a classified failure from the FlowVo API.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("flowvo API %s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("flowvo API %s error: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is match the auth sentinel.
func (e *Error) Unwrap() error {
	if e.Kind == KindAuth {
		return ErrAuthFailed
	}
	return nil
}

// KindOf extracts the error kind from any error returned by the client.
// Unrecognized errors (including context cancellation) classify as network.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// classifyTransport wraps a transport-level failure.
func classifyTransport(err error) error {
	msg := err.Error()
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = "request timed out"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &Error{Kind: KindNetwork, Message: msg}
}
