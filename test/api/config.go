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

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spjmurray/go-util/pkg/set"
)

// Environment variable names.
const (
	EnvTokenBaseURL          = "TOKEN_BASE_URL"
	EnvAppConfigURL          = "APP_CONFIG_URL"
	EnvShopURL               = "SHOP_URL"
	EnvCheckoutInitURL       = "CHECKOUT_INIT_URL"
	EnvCheckoutPassengersURL = "CHECKOUT_PASSENGERS_URL"
	EnvCheckoutUpdateURL     = "CHECKOUT_UPDATE_URL"
	EnvCheckoutConfirmURL    = "CHECKOUT_CONFIRM_URL"
	EnvRetrieveOrderURL      = "RETRIEVE_ORDER_URL"
	EnvClientID              = "CLIENT_ID"
	EnvClientSecret          = "CLIENT_SECRET"
	EnvScope                 = "SCOPE"
)

// CheckoutURLs are the base URLs of the four checkout stages and order retrieval.
type CheckoutURLs struct {
	Init       string
	Passengers string
	Update     string
	Confirm    string
	Retrieve   string
}

// AuthConfig holds the client-credentials grant parameters.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
}

type TestConfig struct {
	TokenBaseURL    string
	AppConfigURL    string
	ShopURL         string
	Checkout        CheckoutURLs
	Auth            AuthConfig
	TokenStrategy   TokenStrategy
	AuthScheme      string
	RequestTimeout  time.Duration
	TestTimeout     time.Duration
	TestDataPath    string
	SkipIntegration bool
	LogRequests     bool
	LogResponses    bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Unset endpoint values are left empty, use Require to check the ones a
// scenario depends on.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	strategy, err := ParseTokenStrategy(os.Getenv("TOKEN_STRATEGY"))
	if err != nil {
		return nil, err
	}

	config := &TestConfig{
		TokenBaseURL: os.Getenv(EnvTokenBaseURL),
		AppConfigURL: os.Getenv(EnvAppConfigURL),
		ShopURL:      os.Getenv(EnvShopURL),
		Checkout: CheckoutURLs{
			Init:       os.Getenv(EnvCheckoutInitURL),
			Passengers: os.Getenv(EnvCheckoutPassengersURL),
			Update:     os.Getenv(EnvCheckoutUpdateURL),
			Confirm:    os.Getenv(EnvCheckoutConfirmURL),
			Retrieve:   os.Getenv(EnvRetrieveOrderURL),
		},
		Auth: AuthConfig{
			ClientID:     os.Getenv(EnvClientID),
			ClientSecret: os.Getenv(EnvClientSecret),
			Scope:        os.Getenv(EnvScope),
		},
		TokenStrategy:   strategy,
		AuthScheme:      os.Getenv("AUTH_SCHEME"),
		RequestTimeout:  getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		TestTimeout:     getDurationWithDefault("TEST_TIMEOUT", 90*time.Second),
		TestDataPath:    getStringWithDefault("TESTDATA_PATH", "../../data/testdata.json"),
		SkipIntegration: getBoolWithDefault("SKIP_INTEGRATION", false),
		LogRequests:     getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:    getBoolWithDefault("LOG_RESPONSES", false),
	}

	return config, nil
}

// lookup returns the configured value for a known environment variable name.
func (c *TestConfig) lookup(key string) string {
	switch key {
	case EnvTokenBaseURL:
		return c.TokenBaseURL
	case EnvAppConfigURL:
		return c.AppConfigURL
	case EnvShopURL:
		return c.ShopURL
	case EnvCheckoutInitURL:
		return c.Checkout.Init
	case EnvCheckoutPassengersURL:
		return c.Checkout.Passengers
	case EnvCheckoutUpdateURL:
		return c.Checkout.Update
	case EnvCheckoutConfirmURL:
		return c.Checkout.Confirm
	case EnvRetrieveOrderURL:
		return c.Checkout.Retrieve
	case EnvClientID:
		return c.Auth.ClientID
	case EnvClientSecret:
		return c.Auth.ClientSecret
	case EnvScope:
		return c.Auth.Scope
	}

	return ""
}

// Missing returns the sorted subset of keys that have no configured value.
func (c *TestConfig) Missing(keys ...string) []string {
	var present []string

	for _, key := range keys {
		if c.lookup(key) != "" {
			present = append(present, key)
		}
	}

	required := set.New[string](keys...)
	configured := set.New[string](present...)

	return slices.Sorted(required.Difference(configured).All())
}

// Require checks that all the given configuration keys are set.
func (c *TestConfig) Require(keys ...string) error {
	missing := c.Missing(keys...)
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s. Please set these environment variables or add them to a .env file", strings.Join(missing, ", "))
	}

	return nil
}

// OfferRequests loads the offer request fixtures at TestDataPath.
func (c *TestConfig) OfferRequests() ([]OfferRequestRecord, error) {
	return LoadOfferRequests(c.TestDataPath)
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// loadEnvFile loads BOOKING_ENV_FILE when set, otherwise the first .env found
// relative to the working directory.
func loadEnvFile() {
	envPaths := []string{
		"../../.env", // From test/api/suites directory
		"test/.env",  // From the repository root
	}

	if path := os.Getenv("BOOKING_ENV_FILE"); path != "" {
		envPaths = []string{path}
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Existing environment variables take precedence.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}
