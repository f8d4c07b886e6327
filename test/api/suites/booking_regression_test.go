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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nevio-air/booking-e2e/test/api"
)

// offerEntries builds one table entry per offer request fixture. The spec tree
// is built before BeforeSuite runs, so the configuration, including any .env
// file, is loaded here to find the fixtures. A failure to load becomes a single
// failing entry.
func offerEntries() []TableEntry {
	fixtureConfig, err := api.LoadTestConfig()
	if err != nil {
		return []TableEntry{
			Entry("loading configuration", api.OfferRequestRecord{}, err),
		}
	}

	records, err := fixtureConfig.OfferRequests()
	if err != nil {
		return []TableEntry{
			Entry(fmt.Sprintf("loading %s", fixtureConfig.TestDataPath), api.OfferRequestRecord{}, err),
		}
	}

	entries := make([]TableEntry, len(records))

	for i, record := range records {
		entries[i] = Entry(fmt.Sprintf("Should retrieve offers for %s", record.Name), record, nil)
	}

	return entries
}

var _ = Describe("Booking Flow Regression", Ordered, Label("regression"), func() {
	var services *api.Services

	BeforeAll(func() {
		api.RequireIntegration(config, api.EnvTokenBaseURL, api.EnvClientID, api.EnvClientSecret, api.EnvShopURL)

		GinkgoWriter.Printf("Authenticating for regression tests\n")

		tokenCtx, cancel := context.WithTimeout(context.Background(), config.TestTimeout)
		defer cancel()

		token := api.AcquireToken(tokenCtx, config)
		services = api.ServicesWithCleanup(config, token)
	})

	DescribeTable("Retrieving offers",
		func(record api.OfferRequestRecord, loadErr error) {
			Expect(loadErr).NotTo(HaveOccurred(), "loading offer request fixtures")

			GinkgoWriter.Printf("Testing route: %s\n", record.Route())
			GinkgoWriter.Printf("Request: %v\n", record.Request)

			raw, err := services.GetOffers(ctx, record.Request)
			Expect(err).NotTo(HaveOccurred())

			offers := api.ExpectValidOffers(raw)
			skus := api.ExpectBookableSKUs(offers)

			GinkgoWriter.Printf("Found %d SKUs for %s\n", len(skus), record.Name)
			api.LogFirstSKU(skus)
		},
		offerEntries(),
	)
})
