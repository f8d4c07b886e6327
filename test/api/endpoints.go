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

package api

// Endpoints resolves the configured base URL of every booking endpoint.
// Each GraphQL operation targets its own base URL.
type Endpoints struct {
	config *TestConfig
}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints(config *TestConfig) *Endpoints {
	return &Endpoints{config: config}
}

// Identity endpoints.
func (e *Endpoints) Token() string {
	return e.config.TokenBaseURL
}

func (e *Endpoints) AppConfig() string {
	return e.config.AppConfigURL
}

// Shop endpoints.
func (e *Endpoints) Shop() string {
	return e.config.ShopURL
}

// Checkout endpoints.
func (e *Endpoints) CheckoutInit() string {
	return e.config.Checkout.Init
}

func (e *Endpoints) CheckoutPassengers() string {
	return e.config.Checkout.Passengers
}

func (e *Endpoints) CheckoutUpdate() string {
	return e.config.Checkout.Update
}

func (e *Endpoints) CheckoutConfirm() string {
	return e.config.Checkout.Confirm
}

func (e *Endpoints) RetrieveOrder() string {
	return e.config.Checkout.Retrieve
}

// For returns the base URL an operation is sent to.
func (e *Endpoints) For(op Operation) string {
	switch op.Name {
	case OpGetOffers.Name:
		return e.Shop()
	case OpCheckoutInitiate.Name:
		return e.CheckoutInit()
	case OpCheckoutPassengers.Name:
		return e.CheckoutPassengers()
	case OpCheckoutUpdate.Name:
		return e.CheckoutUpdate()
	case OpCheckoutConfirm.Name:
		return e.CheckoutConfirm()
	case OpRetrieveOrder.Name:
		return e.RetrieveOrder()
	}

	return ""
}

// EnvFor returns the environment variable that configures an operation's base URL.
func EnvFor(op Operation) string {
	switch op.Name {
	case OpGetOffers.Name:
		return EnvShopURL
	case OpCheckoutInitiate.Name:
		return EnvCheckoutInitURL
	case OpCheckoutPassengers.Name:
		return EnvCheckoutPassengersURL
	case OpCheckoutUpdate.Name:
		return EnvCheckoutUpdateURL
	case OpCheckoutConfirm.Name:
		return EnvCheckoutConfirmURL
	case OpRetrieveOrder.Name:
		return EnvRetrieveOrderURL
	}

	return ""
}
