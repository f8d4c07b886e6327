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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"k8s.io/utils/ptr"
)

// DepartureLayout is the date format of trips.departureDateTime.
const DepartureLayout = "2006-01-02"

func generateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

// GenerateTestID returns a short random identifier for naming records.
func GenerateTestID() string {
	return generateRandomName("test")
}

// OfferRequestBuilder builds offerRequest variables for GetOffers.
type OfferRequestBuilder struct {
	origin        string
	destination   string
	departure     time.Time
	passengerType string
	quantity      *int
	fareTypes     []string
	currency      *string
}

// NewOfferRequest returns a builder for a one-way single adult economy trip
// departing thirty days from now.
func NewOfferRequest() *OfferRequestBuilder {
	return &OfferRequestBuilder{
		origin:        "DXB",
		destination:   "LHR",
		departure:     time.Now().AddDate(0, 0, 30),
		passengerType: "ADT",
		quantity:      ptr.To(1),
		fareTypes:     []string{"ECONOMY"},
	}
}

// WithRoute sets the origin and destination airport codes.
func (b *OfferRequestBuilder) WithRoute(origin, destination string) *OfferRequestBuilder {
	b.origin = origin
	b.destination = destination

	return b
}

// WithDeparture sets the departure date.
func (b *OfferRequestBuilder) WithDeparture(departure time.Time) *OfferRequestBuilder {
	b.departure = departure

	return b
}

// WithPassengers sets the passenger type code and quantity, nil omits the quantity.
func (b *OfferRequestBuilder) WithPassengers(typeCode string, quantity *int) *OfferRequestBuilder {
	b.passengerType = typeCode
	b.quantity = quantity

	return b
}

// WithFareTypes replaces the requested fare types.
func (b *OfferRequestBuilder) WithFareTypes(fareTypes ...string) *OfferRequestBuilder {
	b.fareTypes = fareTypes

	return b
}

// WithCurrency sets the pricing currency, nil omits it.
func (b *OfferRequestBuilder) WithCurrency(currency *string) *OfferRequestBuilder {
	b.currency = currency

	return b
}

// Build returns the offerRequest variable.
func (b *OfferRequestBuilder) Build() map[string]any {
	passengers := map[string]any{
		"passengerTypeCode": b.passengerType,
	}

	if b.quantity != nil {
		passengers["quantity"] = *b.quantity
	}

	request := map[string]any{
		"trips": map[string]any{
			"origin":            b.origin,
			"destination":       b.destination,
			"departureDateTime": b.departure.Format(DepartureLayout),
		},
		"passengers": passengers,
		"fareTypes":  append([]string(nil), b.fareTypes...),
	}

	if b.currency != nil {
		request["currency"] = *b.currency
	}

	return request
}

// Record returns the request as a named fixture record. An empty name is
// replaced by a generated one.
func (b *OfferRequestBuilder) Record(name string) OfferRequestRecord {
	if name == "" {
		name = fmt.Sprintf("%s %s-%s", GenerateTestID(), b.origin, b.destination)
	}

	return OfferRequestRecord{
		Name:    name,
		Request: b.Build(),
	}
}
