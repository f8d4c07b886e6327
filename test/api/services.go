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
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// execute sends op with input bound to its variable and returns the raw value
// found at path inside the data field.
func execute(ctx context.Context, exec Executor, op Operation, input map[string]any, path string) (json.RawMessage, error) {
	data, err := exec.Execute(ctx, op.Document, map[string]any{op.Variable: input})
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() || result.Type == gjson.Null {
		return nil, &Error{
			Kind: KindValidation,
			Op:   op.Name,
			Body: string(data),
			Err:  fmt.Errorf("%s missing from response data", path),
		}
	}

	return json.RawMessage(result.Raw), nil
}

// executeInto is execute followed by decoding into T.
func executeInto[T any](ctx context.Context, exec Executor, op Operation, input map[string]any) (*T, error) {
	raw, err := execute(ctx, exec, op, input, op.Field)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{
			Kind: KindValidation,
			Op:   op.Name,
			Body: string(raw),
			Err:  fmt.Errorf("decoding %s: %w", op.Field, err),
		}
	}

	return &out, nil
}

// Services runs the booking operations against their configured endpoints with
// a fixed credential. By default every call opens its own client and closes it
// before returning; after Reuse one long-lived client per endpoint is kept until
// Close. Services is not safe for concurrent use.
type Services struct {
	endpoints *Endpoints
	headers   map[string]string
	opts      []ClientOption
	reuse     bool
	clients   map[string]*GqlClient
}

// NewServices creates services that send token in the Authorization header,
// prefixed by the configured auth scheme if any.
func NewServices(config *TestConfig, token string, opts ...ClientOption) *Services {
	authorization := token
	if config.AuthScheme != "" {
		authorization = config.AuthScheme + " " + token
	}

	return &Services{
		endpoints: NewEndpoints(config),
		headers: map[string]string{
			"Authorization": authorization,
		},
		opts:    opts,
		clients: map[string]*GqlClient{},
	}
}

// Reuse keeps one open client per endpoint across calls.
func (s *Services) Reuse() *Services {
	s.reuse = true

	return s
}

// Close closes every client kept open by Reuse.
func (s *Services) Close() error {
	var errs []error

	for baseURL, client := range s.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}

		delete(s.clients, baseURL)
	}

	return errors.Join(errs...)
}

func (s *Services) run(op Operation, fn func(Executor) error) error {
	baseURL := s.endpoints.For(op)

	if !s.reuse {
		return WithClient(baseURL, s.headers, s.opts, func(client *GqlClient) error {
			return fn(client)
		})
	}

	client, ok := s.clients[baseURL]
	if !ok {
		client = NewGqlClient(baseURL, s.headers, s.opts...)

		if err := client.Open(); err != nil {
			return err
		}

		s.clients[baseURL] = client
	}

	return fn(client)
}

// GetOffers runs the GetOffers query against the shop endpoint.
func (s *Services) GetOffers(ctx context.Context, offerRequest map[string]any) (json.RawMessage, error) {
	var out json.RawMessage

	err := s.run(OpGetOffers, func(exec Executor) error {
		var err error
		out, err = GetOffers(ctx, exec, offerRequest)

		return err
	})

	return out, err
}

// CheckoutInitiate runs the CheckoutInitiate mutation.
func (s *Services) CheckoutInitiate(ctx context.Context, input map[string]any) (*CheckoutResult, error) {
	return runInto(s, OpCheckoutInitiate, func(exec Executor) (*CheckoutResult, error) {
		return CheckoutInitiate(ctx, exec, input)
	})
}

// CheckoutPassengers runs the CheckoutPassengers mutation.
func (s *Services) CheckoutPassengers(ctx context.Context, input map[string]any) (*PassengersResult, error) {
	return runInto(s, OpCheckoutPassengers, func(exec Executor) (*PassengersResult, error) {
		return CheckoutPassengers(ctx, exec, input)
	})
}

// CheckoutUpdate runs the CheckoutUpdate mutation.
func (s *Services) CheckoutUpdate(ctx context.Context, input map[string]any) (*CheckoutResult, error) {
	return runInto(s, OpCheckoutUpdate, func(exec Executor) (*CheckoutResult, error) {
		return CheckoutUpdate(ctx, exec, input)
	})
}

// CheckoutConfirm runs the CheckoutConfirm mutation.
func (s *Services) CheckoutConfirm(ctx context.Context, input map[string]any) (*ConfirmResult, error) {
	return runInto(s, OpCheckoutConfirm, func(exec Executor) (*ConfirmResult, error) {
		return CheckoutConfirm(ctx, exec, input)
	})
}

// RetrieveOrder runs the RetrieveOrder query.
func (s *Services) RetrieveOrder(ctx context.Context, input map[string]any) (*Order, error) {
	return runInto(s, OpRetrieveOrder, func(exec Executor) (*Order, error) {
		return RetrieveOrder(ctx, exec, input)
	})
}

func runInto[T any](s *Services, op Operation, fn func(Executor) (*T, error)) (*T, error) {
	var out *T

	err := s.run(op, func(exec Executor) error {
		var err error
		out, err = fn(exec)

		return err
	})

	return out, err
}
