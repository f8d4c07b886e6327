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
	"fmt"

	"github.com/tidwall/gjson"
)

// GetOffers sends the GetOffers query and returns getOffers.response verbatim so
// that it can be checked with ValidateOffersJSON before being decoded.
func GetOffers(ctx context.Context, exec Executor, offerRequest map[string]any) (json.RawMessage, error) {
	return execute(ctx, exec, OpGetOffers, offerRequest, OpGetOffers.Field+".response")
}

// DecodeOffers decodes a getOffers response.
func DecodeOffers(raw json.RawMessage) (*OffersResponse, error) {
	var out OffersResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding offers response: %w", err)
	}

	return &out, nil
}

// FirstSKUs extracts connections[0].flightProducts[0].flightSKUs from a raw
// offers response, returning nil when any level is missing.
func FirstSKUs(raw json.RawMessage) []FlightSKU {
	result := gjson.GetBytes(raw, "connections.0.flightProducts.0.flightSKUs")
	if !result.IsArray() {
		return nil
	}

	var skus []FlightSKU
	if err := json.Unmarshal([]byte(result.Raw), &skus); err != nil {
		return nil
	}

	return skus
}
