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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthTokenCookie is the cookie carrying the credential for CookieToken.
const AuthTokenCookie = "AuthToken"

// TokenStrategy selects how the credential is extracted from the grant response.
type TokenStrategy int

const (
	// BodyToken reads access_token from the JSON response body.
	BodyToken TokenStrategy = iota
	// CookieToken reads the AuthToken cookie set by the response.
	CookieToken
	// OAuth2Token performs a standard form encoded grant.
	OAuth2Token
)

func (s TokenStrategy) String() string {
	switch s {
	case BodyToken:
		return "body"
	case CookieToken:
		return "cookie"
	case OAuth2Token:
		return "oauth2"
	}

	return fmt.Sprintf("TokenStrategy(%d)", int(s))
}

// ParseTokenStrategy maps a configuration value to a strategy, the empty string
// selects BodyToken.
func ParseTokenStrategy(value string) (TokenStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "body":
		return BodyToken, nil
	case "cookie":
		return CookieToken, nil
	case "oauth2":
		return OAuth2Token, nil
	}

	return 0, fmt.Errorf("unknown token strategy %q, expected one of body, cookie, oauth2", value)
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Scope        string `json:"scope"`
}

// TokenService obtains a bearer credential with the client credentials grant.
// Every call performs a fresh exchange, nothing is cached.
type TokenService struct {
	config *TestConfig
	opts   []ClientOption
}

// NewTokenService creates a token service against the configured token endpoint.
func NewTokenService(config *TestConfig, opts ...ClientOption) *TokenService {
	return &TokenService{
		config: config,
		opts:   opts,
	}
}

// GetAccessToken exchanges the client credentials for an access token using the
// configured strategy.
func (s *TokenService) GetAccessToken(ctx context.Context) (string, error) {
	switch s.config.TokenStrategy {
	case BodyToken, CookieToken:
		return s.exchange(ctx)
	case OAuth2Token:
		return s.exchangeOAuth2(ctx)
	}

	return "", &Error{Kind: KindAuth, Op: "token", Err: fmt.Errorf("unsupported token strategy %s", s.config.TokenStrategy)}
}

func (s *TokenService) exchange(ctx context.Context) (string, error) {
	client := NewGqlClient(s.config.TokenBaseURL, nil, s.opts...)

	if err := client.Open(); err != nil {
		return "", err
	}

	defer client.Close()

	//nolint:bodyclose // resty reads and closes the body
	resp, traceParent, err := client.post(ctx, "token", tokenRequest{
		ClientID:     s.config.Auth.ClientID,
		ClientSecret: s.config.Auth.ClientSecret,
		GrantType:    "client_credentials",
		Scope:        s.config.Auth.Scope,
	})
	if err != nil {
		return "", err
	}

	if !resp.IsSuccess() {
		client.logUnexpectedStatus("token", resp.StatusCode(), string(resp.Body()), traceParent)

		return "", &Error{
			Kind:       KindAuth,
			Op:         "token",
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
			TraceID:    extractTraceID(traceParent),
		}
	}

	var token string

	switch s.config.TokenStrategy {
	case CookieToken:
		token, err = tokenFromCookies(client, resp)
	default:
		token, err = tokenFromBody(resp)
	}

	if err != nil {
		return "", err
	}

	return normalizeToken(token)
}

func tokenFromBody(resp *resty.Response) (string, error) {
	result := gjson.GetBytes(resp.Body(), "access_token")
	if result.Type != gjson.String || strings.TrimSpace(result.String()) == "" {
		return "", &Error{
			Kind:       KindAuth,
			Op:         "token",
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
			Err:        errors.New("no access_token in response"),
		}
	}

	return result.String(), nil
}

// tokenFromCookies reads the credential from the context's cookie jar, falling
// back to the cookies of the response itself.
func tokenFromCookies(client *GqlClient, resp *resty.Response) (string, error) {
	if cookie := findCookie(client.Cookies(), AuthTokenCookie); cookie != nil {
		return cookie.Value, nil
	}

	if cookie := findCookie(resp.Cookies(), AuthTokenCookie); cookie != nil {
		return cookie.Value, nil
	}

	return "", &Error{
		Kind:       KindAuth,
		Op:         "token",
		StatusCode: resp.StatusCode(),
		Body:       string(resp.Body()),
		Err:        fmt.Errorf("no %s cookie in response", AuthTokenCookie),
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name && cookie.Value != "" {
			return cookie
		}
	}

	return nil
}

func (s *TokenService) exchangeOAuth2(ctx context.Context) (string, error) {
	options := buildOptions(s.opts)

	httpClient := &http.Client{
		Timeout: options.timeout,
	}

	defer httpClient.CloseIdleConnections()

	config := &clientcredentials.Config{
		ClientID:     s.config.Auth.ClientID,
		ClientSecret: s.config.Auth.ClientSecret,
		TokenURL:     s.config.TokenBaseURL,
		Scopes:       strings.Fields(s.config.Auth.Scope),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	token, err := config.Token(context.WithValue(ctx, oauth2.HTTPClient, httpClient))
	if err != nil {
		authErr := &Error{Kind: KindAuth, Op: "token", Err: err}

		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			authErr.Body = string(retrieveErr.Body)

			if retrieveErr.Response != nil {
				authErr.StatusCode = retrieveErr.Response.StatusCode
			}
		}

		return "", authErr
	}

	return normalizeToken(token.AccessToken)
}

// normalizeToken trims the credential and rejects one with embedded whitespace.
func normalizeToken(token string) (string, error) {
	token = strings.TrimSpace(token)

	if token == "" {
		return "", &Error{Kind: KindAuth, Op: "token", Err: errors.New("empty access token")}
	}

	if strings.ContainsFunc(token, unicode.IsSpace) {
		return "", &Error{Kind: KindAuth, Op: "token", Err: errors.New("access token contains whitespace")}
	}

	return token, nil
}
