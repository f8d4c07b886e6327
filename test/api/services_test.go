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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api_test

import (
	"encoding/json"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/nevio-air/booking-e2e/test/api"
	"github.com/nevio-air/booking-e2e/test/api/mock"
	"github.com/nevio-air/booking-e2e/test/api/stub"

	"k8s.io/utils/ptr"
)

var _ = Describe("Services", func() {
	var (
		config   *api.TestConfig
		services *api.Services
		request  map[string]any
	)

	BeforeEach(func() {
		config = backend.Config()
		services = api.NewServices(config, "abc123xyz", api.WithConfig(config))
		request = api.NewOfferRequest().WithRoute("DXB", "LHR").Build()
	})

	Context("When retrieving offers", func() {
		It("should return a response that satisfies the offers contract", func() {
			raw, err := services.GetOffers(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			Expect(api.ValidateOffersJSON(raw).Valid).To(BeTrue())

			skus := api.FirstSKUs(raw)
			Expect(skus).To(HaveLen(2))
			Expect(skus[0].SKUId).To(Equal("SKU-1"))
			Expect(skus[0].SeatsLeft).To(Equal(ptr.To(9)))
		})

		It("should send the credential verbatim and bind the request to req", func() {
			_, err := services.GetOffers(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			requests := backend.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Header.Get("Authorization")).To(Equal("abc123xyz"))
			Expect(requests[0].OperationName).To(Equal("GetOffers"))
			Expect(requests[0].Variables).To(HaveKey("req"))

			req, ok := requests[0].Variables["req"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(req).To(HaveKeyWithValue("fareTypes", ConsistOf("ECONOMY")))
		})

		It("should prefix the credential with a configured scheme", func() {
			config.AuthScheme = "Bearer"

			_, err := api.NewServices(config, "abc123xyz").GetOffers(ctx, request)
			Expect(err).NotTo(HaveOccurred())
			Expect(backend.Requests()[0].Header.Get("Authorization")).To(Equal("Bearer abc123xyz"))
		})

		It("should hand back an out of contract response for validation", func() {
			backend.RespondData(api.OpGetOffers.Name, stub.OffersData(api.FlightSKU{SKUId: "SKU-9", SeatsLeft: ptr.To(-1)}))

			raw, err := services.GetOffers(ctx, request)
			Expect(err).NotTo(HaveOccurred())

			result := api.ValidateOffersJSON(raw)
			Expect(result.Valid).To(BeFalse())
			Expect(result.Violations).To(ContainElement(HaveField("Path", "connections.0.flightProducts.0.flightSKUs.0.seatsLeft")))
		})

		It("should fail with a validation error when the response field is null", func() {
			backend.RespondData(api.OpGetOffers.Name, map[string]any{"getOffers": map[string]any{"response": nil}})

			_, err := services.GetOffers(ctx, request)
			Expect(errors.Is(err, api.ErrValidation)).To(BeTrue())
		})

		It("should propagate GraphQL errors unchanged", func() {
			backend.RespondErrors(api.OpGetOffers.Name, nil, "OfferRequest.trips.origin is required")

			_, err := services.GetOffers(ctx, request)
			Expect(errors.Is(err, api.ErrGraphQL)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("OfferRequest.trips.origin is required"))
		})

		It("should propagate transport errors unchanged", func() {
			backend.Respond(api.OpGetOffers.Name, http.StatusBadGateway, "bad gateway")

			_, err := services.GetOffers(ctx, request)

			var transportErr *api.Error
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Kind).To(Equal(api.KindTransport))
			Expect(transportErr.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(transportErr.Body).To(Equal("bad gateway"))
		})

		It("should fail when the shop endpoint is not configured", func() {
			config.ShopURL = ""

			_, err := api.NewServices(config, "abc123xyz").GetOffers(ctx, request)
			Expect(errors.Is(err, api.ErrTransport)).To(BeTrue())
			Expect(backend.Requests()).To(BeEmpty())
		})
	})

	Context("When running the checkout operations", func() {
		It("should return the typed result of every stage", func() {
			initiated, err := services.CheckoutInitiate(ctx, map[string]any{"offerId": "SKU-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(initiated.CheckoutID).To(Equal("chk-1"))
			Expect(initiated.Totals).To(Equal(&api.Totals{Amount: 420.5, Currency: "USD"}))

			passengers, err := services.CheckoutPassengers(ctx, map[string]any{"checkoutId": initiated.CheckoutID})
			Expect(err).NotTo(HaveOccurred())
			Expect(passengers.Passengers).To(HaveLen(1))

			updated, err := services.CheckoutUpdate(ctx, map[string]any{"checkoutId": initiated.CheckoutID})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Totals.Amount).To(BeNumerically("==", 455))

			confirmed, err := services.CheckoutConfirm(ctx, map[string]any{"checkoutId": initiated.CheckoutID})
			Expect(err).NotTo(HaveOccurred())
			Expect(confirmed.Status).To(Equal("CONFIRMED"))

			order, err := services.RetrieveOrder(ctx, map[string]any{"orderId": confirmed.OrderID})
			Expect(err).NotTo(HaveOccurred())
			Expect(order.OrderID).To(Equal(confirmed.OrderID))
			Expect(order.Segments).To(HaveLen(1))

			for _, request := range backend.Requests() {
				Expect(request.Variables).To(HaveKey("input"))
			}
		})
	})

	Context("When reusing clients", func() {
		It("should serve many calls and close cleanly", func() {
			services.Reuse()

			for range 3 {
				_, err := services.GetOffers(ctx, request)
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := services.RetrieveOrder(ctx, map[string]any{"orderId": "ord-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(backend.Requests()).To(HaveLen(4))
			Expect(services.Close()).To(Succeed())
			Expect(services.Close()).To(Succeed())
		})
	})
})

var _ = Describe("Executor level operations", func() {
	var (
		ctrl *gomock.Controller
		exec *mock.MockExecutor
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		exec = mock.NewMockExecutor(ctrl)
	})

	It("should send GetOffers with the request bound to req", func() {
		request := map[string]any{"fareTypes": []string{"ECONOMY"}}

		exec.EXPECT().
			Execute(gomock.Any(), api.OpGetOffers.Document, map[string]any{"req": request}).
			Return(json.RawMessage(`{"getOffers":{"response":{"connections":[]}}}`), nil)

		raw, err := api.GetOffers(ctx, exec, request)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(MatchJSON(`{"connections":[]}`))
	})

	It("should decode the checkout result", func() {
		input := map[string]any{"offerId": "SKU-1"}

		exec.EXPECT().
			Execute(gomock.Any(), api.OpCheckoutInitiate.Document, map[string]any{"input": input}).
			Return(json.RawMessage(`{"checkoutInitiate":{"checkoutId":"chk-7","totals":{"amount":12.5,"currency":"EUR"}}}`), nil)

		result, err := api.CheckoutInitiate(ctx, exec, input)
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(&api.CheckoutResult{CheckoutID: "chk-7", Totals: &api.Totals{Amount: 12.5, Currency: "EUR"}}))
	})

	It("should return executor failures unchanged", func() {
		failure := &api.Error{Kind: api.KindGraphQL, Op: api.OpCheckoutConfirm.Name}

		exec.EXPECT().Execute(gomock.Any(), api.OpCheckoutConfirm.Document, gomock.Any()).Return(nil, failure)

		_, err := api.CheckoutConfirm(ctx, exec, map[string]any{})
		Expect(err).To(BeIdenticalTo(failure))
	})

	It("should reject a result that does not decode", func() {
		exec.EXPECT().
			Execute(gomock.Any(), api.OpRetrieveOrder.Document, gomock.Any()).
			Return(json.RawMessage(`{"retrieveOrder":{"orderId":42}}`), nil)

		_, err := api.RetrieveOrder(ctx, exec, map[string]any{})
		Expect(api.KindOf(err)).To(Equal(api.KindValidation))
	})
})
