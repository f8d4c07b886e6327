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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// RequireIntegration skips the current spec when integration runs are disabled
// or any of the given configuration keys is unset.
func RequireIntegration(config *TestConfig, keys ...string) {
	if config.SkipIntegration {
		Skip("integration tests disabled by SKIP_INTEGRATION")
	}

	if missing := config.Missing(keys...); len(missing) > 0 {
		Skip(fmt.Sprintf("missing configuration: %s", strings.Join(missing, ", ")))
	}
}

// AcquireToken exchanges the configured client credentials for an access token,
// failing the spec if the exchange does. The exchange is bounded by TestTimeout.
func AcquireToken(ctx context.Context, config *TestConfig) string {
	GinkgoHelper()

	if config.TestTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, config.TestTimeout)
		defer cancel()
	}

	GinkgoWriter.Printf("Acquiring access token from %s using the %s strategy\n", config.TokenBaseURL, config.TokenStrategy)

	token, err := NewTokenService(config, WithConfig(config)).GetAccessToken(ctx)
	Expect(err).NotTo(HaveOccurred(), "acquiring access token")

	GinkgoWriter.Printf("Acquired access token %s\n", maskSecret(token))

	if info, err := InspectToken(token); err == nil {
		GinkgoWriter.Printf("Token subject=%q issuer=%q expires=%s\n", info.Subject, info.Issuer, info.ExpiresAt)
		Expect(info.Expired(time.Now())).To(BeFalse(), "access token expired at %s", info.ExpiresAt)
	}

	return token
}

// ServicesWithCleanup creates services that keep one client per endpoint for
// the lifetime of the spec and closes them when it ends.
func ServicesWithCleanup(config *TestConfig, token string) *Services {
	services := NewServices(config, token, WithConfig(config)).Reuse()

	DeferCleanup(services.Close)

	return services
}

// ExpectValidOffers checks raw against the offers contract, failing the spec with
// every violation on a mismatch, and returns the decoded response.
func ExpectValidOffers(raw json.RawMessage) *OffersResponse {
	GinkgoHelper()

	result := ValidateOffersJSON(raw)
	if !result.Valid {
		violations, _ := json.MarshalIndent(result.Violations, "", "  ")

		GinkgoWriter.Printf("Schema validation failed: %s\n", violations)
		Fail(fmt.Sprintf("offer response schema mismatch: %s", violations))
	}

	offers, err := DecodeOffers(raw)
	Expect(err).NotTo(HaveOccurred())

	return offers
}

// ExpectBookableSKUs checks the first flight product offers at least one SKU
// with an identifier and returns its SKUs.
func ExpectBookableSKUs(offers *OffersResponse) []FlightSKU {
	GinkgoHelper()

	skus := offers.FirstSKUs()
	Expect(skus).NotTo(BeEmpty(), "expected SKUs in connections[0].flightProducts[0]")
	Expect(skus[0].SKUId).NotTo(BeEmpty(), "expected the first SKU to have an SKUId")

	return skus
}

// LogFirstSKU writes a one line summary of the first SKU.
func LogFirstSKU(skus []FlightSKU) {
	if len(skus) == 0 {
		return
	}

	name := "Unnamed"
	if skus[0].SKUName != nil && *skus[0].SKUName != "" {
		name = *skus[0].SKUName
	}

	GinkgoWriter.Printf("First SKU: %s - %s\n", skus[0].SKUId, name)

	if skus[0].SeatsLeft != nil {
		GinkgoWriter.Printf("Seats available: %d\n", *skus[0].SeatsLeft)
	}
}
