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
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/tidwall/gjson"

	"github.com/nevio-air/booking-e2e/test/api"
)

var _ = Describe("GqlClient", func() {
	variables := map[string]any{"req": map[string]any{"fareTypes": []any{"ECONOMY"}}}

	Context("When opening a client", func() {
		It("should reject an empty base URL", func() {
			client := api.NewGqlClient("", nil)

			err := client.Open()
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, api.ErrTransport)).To(BeTrue())
		})

		It("should reject a relative base URL", func() {
			client := api.NewGqlClient("/graphql", nil)

			Expect(api.IsKind(client.Open(), api.KindTransport)).To(BeTrue())
		})

		It("should be idempotent", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), nil)
			defer client.Close()

			Expect(client.Open()).To(Succeed())
			Expect(client.Open()).To(Succeed())
		})
	})

	Context("When closing a client", func() {
		It("should succeed on a client that was never opened", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), nil)

			Expect(client.Close()).To(Succeed())
		})

		It("should succeed when called twice", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), nil)

			Expect(client.Open()).To(Succeed())
			Expect(client.Close()).To(Succeed())
			Expect(client.Close()).To(Succeed())
		})

		It("should refuse to execute once closed", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), nil)

			Expect(client.Open()).To(Succeed())
			Expect(client.Close()).To(Succeed())

			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(api.IsKind(err, api.KindTransport)).To(BeTrue())
			Expect(backend.Requests()).To(BeEmpty())
		})
	})

	Context("When building the header set", func() {
		It("should default the content type to JSON", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), nil)

			Expect(client.Headers()).To(HaveKeyWithValue("Content-Type", "application/json"))
		})

		It("should let caller headers override the default regardless of case", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), map[string]string{
				"content-type":  "application/graphql-response+json",
				"authorization": "abc",
			})

			Expect(client.Headers()).To(HaveKeyWithValue("Content-Type", "application/graphql-response+json"))
			Expect(client.Headers()).To(HaveKeyWithValue("Authorization", "abc"))
			Expect(client.Headers()).To(HaveLen(2))
		})

		It("should not expose its header set for mutation", func() {
			client := api.NewGqlClient(backend.GraphQLURL(), map[string]string{"Authorization": "abc"})

			client.Headers()["Authorization"] = "tampered"

			Expect(client.Headers()).To(HaveKeyWithValue("Authorization", "abc"))
		})
	})

	Context("When executing an operation", func() {
		var client *api.GqlClient

		BeforeEach(func() {
			client = api.NewGqlClient(backend.GraphQLURL(), map[string]string{"Authorization": "abc123xyz"})
			Expect(client.Open()).To(Succeed())

			DeferCleanup(client.Close)
		})

		It("should return the data field", func() {
			data, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).NotTo(HaveOccurred())

			Expect(gjson.GetBytes(data, "getOffers.response.connections.0.flightProducts.0.flightSKUs.#").Int()).To(BeEquivalentTo(2))
			Expect(gjson.GetBytes(data, "getOffers.response.connections.0.flightProducts.0.flightSKUs.0.SKUId").String()).To(Equal("SKU-1"))
		})

		It("should post the document, variables and operation name", func() {
			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).NotTo(HaveOccurred())

			requests := backend.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Query).To(Equal(api.OpGetOffers.Document))
			Expect(requests[0].OperationName).To(Equal("GetOffers"))
			Expect(requests[0].Variables).To(HaveKey("req"))
		})

		It("should send the header set and trace context on every request", func() {
			for range 3 {
				_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
				Expect(err).NotTo(HaveOccurred())
			}

			requests := backend.Requests()
			Expect(requests).To(HaveLen(3))

			for _, request := range requests {
				Expect(request.Header.Get("Authorization")).To(Equal("abc123xyz"))
				Expect(request.Header.Get("Content-Type")).To(HavePrefix("application/json"))
				Expect(request.Header.Get("Traceparent")).To(MatchRegexp(`^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`))
			}
		})

		It("should fail closed when errors accompany data", func() {
			backend.RespondErrors(api.OpGetOffers.Name, map[string]any{"getOffers": nil}, "seat map unavailable", "pricing timeout")

			data, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(data).To(BeNil())
			Expect(errors.Is(err, api.ErrGraphQL)).To(BeTrue())

			var gqlErr *api.Error
			Expect(errors.As(err, &gqlErr)).To(BeTrue())
			Expect(gqlErr.GraphQLErrors).To(HaveLen(2))
			Expect(gqlErr.GraphQLErrors[0].Message).To(Equal("seat map unavailable"))
			Expect(gqlErr.GraphQLErrors[1].Message).To(Equal("pricing timeout"))
			Expect(err.Error()).To(ContainSubstring("pricing timeout"))
		})

		It("should carry the status and raw body of a non-2xx response", func() {
			backend.Respond(api.OpGetOffers.Name, http.StatusInternalServerError, "upstream <b>exploded</b>")

			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(errors.Is(err, api.ErrTransport)).To(BeTrue())

			var transportErr *api.Error
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(transportErr.Body).To(Equal("upstream <b>exploded</b>"))
			Expect(transportErr.TraceID).To(HaveLen(32))
			Expect(err.Error()).To(ContainSubstring("HTTP 500: upstream <b>exploded</b>"))
		})

		It("should treat an undecodable 2xx body as a transport error", func() {
			backend.Respond(api.OpGetOffers.Name, http.StatusOK, "<html>gateway</html>")

			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(api.KindOf(err)).To(Equal(api.KindTransport))
		})

		It("should be reusable across operations", func() {
			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).NotTo(HaveOccurred())

			_, err = client.Execute(ctx, api.OpRetrieveOrder.Document, map[string]any{"input": map[string]any{"orderId": "ord-1"}})
			Expect(err).NotTo(HaveOccurred())

			Expect(backend.Requests()).To(HaveLen(2))
		})
	})

	Context("When logging to a writer", func() {
		It("should write request and error logs there with credentials masked", func() {
			buffer := gbytes.NewBuffer()

			client := api.NewGqlClient(backend.GraphQLURL(), map[string]string{"Authorization": "abc123xyz"},
				api.WithRequestLogging(true, false),
				api.WithLogWriter(buffer),
			)
			Expect(client.Open()).To(Succeed())

			DeferCleanup(client.Close)

			_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).NotTo(HaveOccurred())

			backend.Respond(api.OpGetOffers.Name, http.StatusBadGateway, "bad gateway")

			_, err = client.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).To(HaveOccurred())

			logs := string(buffer.Contents())
			Expect(logs).To(ContainSubstring("[POST " + backend.GraphQLURL() + "] op=GetOffers status=200"))
			Expect(logs).To(ContainSubstring("UNEXPECTED STATUS op=GetOffers got=502 body=bad gateway"))
			Expect(logs).To(ContainSubstring("TRACE CONTEXT"))
			Expect(logs).To(ContainSubstring("abc1***"))
			Expect(logs).NotTo(ContainSubstring("abc123xyz"))
		})
	})

	Context("When scoping a client", func() {
		It("should close the client after the callback", func() {
			var scoped *api.GqlClient

			err := api.WithClient(backend.GraphQLURL(), nil, nil, func(client *api.GqlClient) error {
				scoped = client

				_, err := client.Execute(ctx, api.OpGetOffers.Document, variables)

				return err
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = scoped.Execute(ctx, api.OpGetOffers.Document, variables)
			Expect(err).To(MatchError(ContainSubstring("client is not open")))
		})

		It("should return the callback error", func() {
			sentinel := errors.New("callback failed")

			err := api.WithClient(backend.GraphQLURL(), nil, nil, func(*api.GqlClient) error {
				return sentinel
			})
			Expect(err).To(MatchError(sentinel))
		})
	})
})
