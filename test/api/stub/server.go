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

// Package stub serves an in-process stand-in for the booking backend: a token
// endpoint, an OAuth2 token endpoint and a GraphQL endpoint that answers
// canned responses by operation name.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nevio-air/booking-e2e/test/api"

	"k8s.io/utils/ptr"
)

const (
	TokenPath      = "/token"
	OAuthTokenPath = "/oauth/token"
	GraphQLPath    = "/graphql"

	// Issuer is the iss claim of tokens issued by the stub.
	Issuer = "booking-stub"
)

//nolint:gochecknoglobals
var signingKey = []byte("booking-stub-signing-key")

// TokenMode selects where the token endpoint puts the credential.
type TokenMode int

const (
	TokenInBody TokenMode = iota
	TokenInCookie
)

// Response is a canned HTTP response.
type Response struct {
	Status int
	Body   string
}

// Request is a request received by the stub.
type Request struct {
	Path          string
	Header        http.Header
	OperationName string
	Query         string
	Variables     map[string]any
	Form          map[string]string
	Body          map[string]any
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Server is a running stub backend. It is safe for concurrent use.
type Server struct {
	server *httptest.Server

	lock        sync.Mutex
	token       string
	tokenMode   TokenMode
	tokenStatus int
	responses   map[string]Response
	requests    []Request
}

// IssueToken returns an HS256 JWT for subject valid for an hour.
func IssueToken(subject string) string {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}

	return token
}

// New starts a stub backend with default canned responses for every booking
// operation. Until SetToken is called both token endpoints issue a JWT for the
// stub client.
func New() *Server {
	s := &Server{
		token:       IssueToken("stub-client"),
		tokenStatus: http.StatusOK,
		responses:   map[string]Response{},
	}

	s.RespondData(api.OpGetOffers.Name, OffersData(DefaultSKUs()...))
	s.RespondData(api.OpCheckoutInitiate.Name, map[string]any{
		api.OpCheckoutInitiate.Field: api.CheckoutResult{CheckoutID: "chk-1", Totals: &api.Totals{Amount: 420.5, Currency: "USD"}},
	})
	s.RespondData(api.OpCheckoutPassengers.Name, map[string]any{
		api.OpCheckoutPassengers.Field: api.PassengersResult{
			CheckoutID: "chk-1",
			Passengers: []api.Passenger{{ID: "pax-1", Type: "ADT", FirstName: "Ada", LastName: "Lovelace"}},
		},
	})
	s.RespondData(api.OpCheckoutUpdate.Name, map[string]any{
		api.OpCheckoutUpdate.Field: api.CheckoutResult{CheckoutID: "chk-1", Totals: &api.Totals{Amount: 455, Currency: "USD"}},
	})
	s.RespondData(api.OpCheckoutConfirm.Name, map[string]any{
		api.OpCheckoutConfirm.Field: api.ConfirmResult{OrderID: "ord-1", Status: "CONFIRMED", Totals: &api.Totals{Amount: 455, Currency: "USD"}},
	})
	s.RespondData(api.OpRetrieveOrder.Name, map[string]any{
		api.OpRetrieveOrder.Field: api.Order{
			OrderID:    "ord-1",
			Status:     "CONFIRMED",
			Passengers: []api.Passenger{{ID: "pax-1", Type: "ADT", FirstName: "Ada", LastName: "Lovelace"}},
			Segments:   []api.Segment{{ID: "seg-1", Origin: "DXB", Destination: "LHR"}},
			Totals:     &api.Totals{Amount: 455, Currency: "USD"},
		},
	})

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Post(TokenPath, s.handleToken)
	router.Post(OAuthTokenPath, s.handleOAuthToken)
	router.Post(GraphQLPath, s.handleGraphQL)

	s.server = httptest.NewServer(router)

	return s
}

// DefaultSKUs are the SKUs returned by GetOffers until overridden.
func DefaultSKUs() []api.FlightSKU {
	return []api.FlightSKU{
		{SKUId: "SKU-1", SKUCode: ptr.To("Y1"), SKUName: ptr.To("Economy Light"), SeatsLeft: ptr.To(9)},
		{SKUId: "SKU-2", SKUCode: ptr.To("Y2"), SKUName: ptr.To("Economy Flex"), SeatsLeft: ptr.To(4)},
	}
}

// OffersData wraps SKUs in a single connection and product as the data field of
// a GetOffers response.
func OffersData(skus ...api.FlightSKU) map[string]any {
	return map[string]any{
		api.OpGetOffers.Field: map[string]any{
			"response": api.OffersResponse{
				Connections: []api.Connection{
					{FlightProducts: []api.FlightProduct{{FlightSKUs: skus}}},
				},
			},
		},
	}
}

// Close stops the server.
func (s *Server) Close() {
	s.server.Close()
}

// URL returns the absolute URL of path on the server.
func (s *Server) URL(path string) string {
	return s.server.URL + path
}

func (s *Server) TokenURL() string {
	return s.URL(TokenPath)
}

func (s *Server) OAuthTokenURL() string {
	return s.URL(OAuthTokenPath)
}

func (s *Server) GraphQLURL() string {
	return s.URL(GraphQLPath)
}

// Config returns a configuration with every endpoint pointed at the server.
func (s *Server) Config() *api.TestConfig {
	return &api.TestConfig{
		TokenBaseURL: s.TokenURL(),
		AppConfigURL: s.GraphQLURL(),
		ShopURL:      s.GraphQLURL(),
		Checkout: api.CheckoutURLs{
			Init:       s.GraphQLURL(),
			Passengers: s.GraphQLURL(),
			Update:     s.GraphQLURL(),
			Confirm:    s.GraphQLURL(),
			Retrieve:   s.GraphQLURL(),
		},
		Auth: api.AuthConfig{
			ClientID:     "stub-client",
			ClientSecret: "stub-secret",
			Scope:        "booking",
		},
		TokenStrategy:  api.BodyToken,
		RequestTimeout: 10 * time.Second,
		TestTimeout:    30 * time.Second,
	}
}

// SetToken sets the credential issued by both token endpoints.
func (s *Server) SetToken(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.token = token
}

// SetTokenMode selects body or cookie delivery on the token endpoint.
func (s *Server) SetTokenMode(mode TokenMode) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tokenMode = mode
}

// SetTokenStatus makes both token endpoints answer with status. Any status
// other than 200 is answered with an invalid_client error body.
func (s *Server) SetTokenStatus(status int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tokenStatus = status
}

// Respond sets the raw response for an operation.
func (s *Server) Respond(operationName string, status int, body string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.responses[operationName] = Response{Status: status, Body: body}
}

// RespondData answers an operation with 200 and {"data": data}.
func (s *Server) RespondData(operationName string, data any) {
	s.Respond(operationName, http.StatusOK, mustMarshal(map[string]any{"data": data}))
}

// RespondErrors answers an operation with 200, the given data and one GraphQL
// error per message.
func (s *Server) RespondErrors(operationName string, data any, messages ...string) {
	errs := make([]map[string]any, len(messages))

	for i, message := range messages {
		errs[i] = map[string]any{"message": message}
	}

	s.Respond(operationName, http.StatusOK, mustMarshal(map[string]any{"data": data, "errors": errs}))
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Clone(s.requests)
}

// Reset forgets the requests received so far.
func (s *Server) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.requests = nil
}

func (s *Server) record(request Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.requests = append(s.requests, request)
}

func (s *Server) tokenState() (string, TokenMode, int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.token, s.tokenMode, s.tokenStatus
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	s.record(Request{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})

	token, mode, status := s.tokenState()

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{"error": "invalid_client"})
		return
	}

	if mode == TokenInCookie {
		http.SetCookie(w, &http.Cookie{Name: api.AuthTokenCookie, Value: token, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"access_token": token})
}

func (s *Server) handleOAuthToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	form := map[string]string{}
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}

	s.record(Request{Path: r.URL.Path, Header: r.Header.Clone(), Form: form})

	token, _, status := s.tokenState()

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{"error": "invalid_client"})
		return
	}

	if form["grant_type"] != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var body graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	s.record(Request{
		Path:          r.URL.Path,
		Header:        r.Header.Clone(),
		OperationName: body.OperationName,
		Query:         body.Query,
		Variables:     body.Variables,
	})

	s.lock.Lock()
	response, ok := s.responses[body.OperationName]
	s.lock.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":   nil,
			"errors": []map[string]any{{"message": fmt.Sprintf("unknown operation %q", body.OperationName)}},
		})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Status)
	_, _ = w.Write([]byte(response.Body))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func mustMarshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(data)
}
