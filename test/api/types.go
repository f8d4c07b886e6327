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

//nolint:revive,stylecheck // field names follow the GraphQL schema
package api

// FlightSKU is a bookable flight product variant.
type FlightSKU struct {
	SKUId     string  `json:"SKUId"`
	SKUCode   *string `json:"SKUCode,omitempty"`
	SKUName   *string `json:"SKUName,omitempty"`
	SeatsLeft *int    `json:"seatsLeft,omitempty"`
}

type FlightProduct struct {
	FlightSKUs []FlightSKU `json:"flightSKUs"`
}

type Connection struct {
	FlightProducts []FlightProduct `json:"flightProducts"`
}

// OffersResponse is the response field of getOffers.
type OffersResponse struct {
	Connections []Connection `json:"connections"`
}

// FirstSKUs returns the SKUs of the first product of the first connection.
func (r *OffersResponse) FirstSKUs() []FlightSKU {
	if r == nil || len(r.Connections) == 0 || len(r.Connections[0].FlightProducts) == 0 {
		return nil
	}

	return r.Connections[0].FlightProducts[0].FlightSKUs
}

type Totals struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Passenger struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Segment struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// CheckoutResult is returned by checkoutInitiate and checkoutUpdate.
type CheckoutResult struct {
	CheckoutID string  `json:"checkoutId"`
	Totals     *Totals `json:"totals,omitempty"`
}

// PassengersResult is returned by checkoutPassengers.
type PassengersResult struct {
	CheckoutID string      `json:"checkoutId"`
	Passengers []Passenger `json:"passengers"`
}

// ConfirmResult is returned by checkoutConfirm.
type ConfirmResult struct {
	OrderID string  `json:"orderId"`
	Totals  *Totals `json:"totals,omitempty"`
	Status  string  `json:"status"`
}

// Order is returned by retrieveOrder.
type Order struct {
	OrderID    string      `json:"orderId"`
	Status     string      `json:"status"`
	Passengers []Passenger `json:"passengers"`
	Segments   []Segment   `json:"segments"`
	Totals     *Totals     `json:"totals,omitempty"`
}
