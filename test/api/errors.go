/*
Copyright 2026 Nevio.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the harness raises.
type ErrorKind int

const (
	// KindTransport is a failed HTTP exchange or a non-2xx status.
	KindTransport ErrorKind = iota + 1
	// KindGraphQL is a 2xx response whose envelope carries errors.
	KindGraphQL
	// KindAuth is a token exchange that did not yield a credential.
	KindAuth
	// KindValidation is a response that does not match its schema.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindGraphQL:
		return "graphql"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	}

	return "unknown"
}

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrTransport  = errors.New("transport error")
	ErrGraphQL    = errors.New("graphql error")
	ErrAuth       = errors.New("auth error")
	ErrValidation = errors.New("validation error")
)

// GraphQLError is a single entry of a GraphQL envelope's errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Locations  []any          `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error is the structured error returned by the client, token service and validator.
type Error struct {
	Kind ErrorKind
	// Op names the operation or endpoint that failed.
	Op string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Body is the raw response body, verbatim.
	Body          string
	GraphQLErrors []GraphQLError
	Violations    []Violation
	// TraceID correlates the request with server side logs.
	TraceID string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())
	b.WriteString(" error")

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	switch e.Kind {
	case KindTransport, KindAuth:
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, ": HTTP %d: %s", e.StatusCode, e.Body)
		}
	case KindGraphQL:
		list, _ := json.Marshal(e.GraphQLErrors)
		fmt.Fprintf(&b, ": GraphQL: %s", list)
	case KindValidation:
		list, _ := json.MarshalIndent(e.Violations, "", "  ")
		fmt.Fprintf(&b, ": schema mismatch: %s", list)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	if e.TraceID != "" {
		fmt.Fprintf(&b, " (trace ID: %s)", e.TraceID)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrGraphQL:
		return e.Kind == KindGraphQL
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrValidation:
		return e.Kind == KindValidation
	}

	return false
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
