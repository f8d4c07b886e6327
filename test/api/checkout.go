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
)

// CheckoutInitiate starts a checkout and returns its id and totals.
func CheckoutInitiate(ctx context.Context, exec Executor, input map[string]any) (*CheckoutResult, error) {
	return executeInto[CheckoutResult](ctx, exec, OpCheckoutInitiate, input)
}

// CheckoutPassengers attaches passengers to a checkout.
func CheckoutPassengers(ctx context.Context, exec Executor, input map[string]any) (*PassengersResult, error) {
	return executeInto[PassengersResult](ctx, exec, OpCheckoutPassengers, input)
}

// CheckoutUpdate selects SKUs and ancillaries on a checkout.
func CheckoutUpdate(ctx context.Context, exec Executor, input map[string]any) (*CheckoutResult, error) {
	return executeInto[CheckoutResult](ctx, exec, OpCheckoutUpdate, input)
}

// CheckoutConfirm confirms a checkout into an order.
func CheckoutConfirm(ctx context.Context, exec Executor, input map[string]any) (*ConfirmResult, error) {
	return executeInto[ConfirmResult](ctx, exec, OpCheckoutConfirm, input)
}

// RetrieveOrder reads back a confirmed order.
func RetrieveOrder(ctx context.Context, exec Executor, input map[string]any) (*Order, error) {
	return executeInto[Order](ctx, exec, OpRetrieveOrder, input)
}
