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

package suites

import (
	. "github.com/onsi/ginkgo/v2"
)

var _ = Describe("Checkout Flow", Label("checkout"), func() {
	Context("When initiating a checkout", func() {
		Describe("Given an offer returned by GetOffers", func() {
			It("should create a checkout and return its id", func() {
				// Given: A valid token and the first SKU of a GetOffers response
				// When: I call checkoutInitiate with the selected SKU
				// Then: A non-empty checkoutId should be returned
				// And: The totals should be priced in the requested currency
			})
		})
	})

	Context("When adding passengers", func() {
		Describe("Given an initiated checkout", func() {
			It("should accept adult, child and infant passengers", func() {
				// Given: A checkoutId from checkoutInitiate
				// When: I call checkoutPassengers with ADT, CHD and INF passengers
				// Then: Every passenger should be returned with an id
				// And: The checkoutId should be unchanged
			})

			It("should reject an infant without an accompanying adult", func() {
				// Given: A checkoutId from checkoutInitiate
				// When: I call checkoutPassengers with only an INF passenger
				// Then: The response should carry a GraphQL error
			})
		})
	})

	Context("When updating a checkout", func() {
		Describe("Given a checkout with passengers", func() {
			It("should apply SKU, baggage and seat selections", func() {
				// Given: A checkout with passengers attached
				// When: I call checkoutUpdate selecting SKUs, baggage and seats
				// Then: The totals should reflect the selected ancillaries
			})
		})
	})

	Context("When confirming a checkout", func() {
		Describe("Given a fully updated checkout", func() {
			It("should create an order with the quoted totals", func() {
				// Given: A checkout with passengers and selections
				// When: I call checkoutConfirm
				// Then: An orderId should be returned
				// And: The totals should match the last checkoutUpdate totals
				// And: The status should be confirmed
			})
		})
	})

	Context("When retrieving an order", func() {
		Describe("Given a confirmed order", func() {
			It("should return the passengers, segments and totals", func() {
				// Given: An orderId from checkoutConfirm
				// When: I call retrieveOrder
				// Then: The orderId should match
				// And: Every passenger and segment should be present
				// And: The totals should match the confirmation
			})
		})
	})
})
