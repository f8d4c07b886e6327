/*
Copyright 2024-2025 the Unikorn Authors.
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

// Package api provides end-to-end test utilities for the booking GraphQL API.
//
// # Client
//
// GqlClient posts GraphQL documents to a single endpoint. It is opened before
// use and closed after, and one opened client may run any number of
// operations. Every request carries W3C trace context so that a failing
// request can be found in the backend logs by its trace ID.
//
// # Errors
//
// Every failure is an *Error of one of four kinds:
//   - KindTransport: no response, a non-2xx status or an undecodable body
//   - KindGraphQL: the response carried a non-empty errors list
//   - KindAuth: the token exchange failed or returned no usable token
//   - KindValidation: a response did not have the expected shape
//
// The raw body and the full GraphQL error list are kept so that test output
// carries everything needed to diagnose a failure.
//
// # Services
//
// The shop and checkout operations are available both as functions over an
// Executor, for use with a mock or an already open client, and as methods on
// Services, which manage clients against the configured endpoints.
//
// # Future Improvements
//
// * The checkout suite is pending until the checkout endpoints are available
// in a shared environment.
package api
