/*
Copyright 2025 the Unikorn Authors.
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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/nevio-air/booking-e2e/pkg/constants"
	"github.com/nevio-air/booking-e2e/pkg/metrics"
	"github.com/nevio-air/booking-e2e/test/api"
	"github.com/nevio-air/booking-e2e/test/api/stub"
)

var errProbeFailed = errors.New("one or more records failed")

type options struct {
	testData string
	xlsx     string
	sheet    string
	record   string
	stub     bool
	metrics  string
	version  bool
}

func (o *options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.testData, "testdata", "test/data/testdata.json", "Offer request fixtures to probe with.")
	f.StringVar(&o.xlsx, "xlsx", "", "Convert a spreadsheet of offer requests to fixture JSON on stdout and exit.")
	f.StringVar(&o.sheet, "sheet", "", "Sheet to read with --xlsx, defaults to the first.")
	f.StringVar(&o.record, "record", "", "Only probe the fixture record with this name.")
	f.BoolVar(&o.stub, "stub", false, "Probe an in-process stub backend instead of the configured endpoints.")
	f.StringVar(&o.metrics, "metrics-file", "", "Write Prometheus metrics for the run to this textfile.")
	f.BoolVar(&o.version, "version", false, "Print the version and exit.")
}

func main() {
	var o options

	o.AddFlags(pflag.CommandLine)

	pflag.Parse()

	if o.version {
		fmt.Println(constants.VersionString())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error

	if o.xlsx != "" {
		err = convert(&o)
	} else {
		err = probe(ctx, &o)
	}

	if err != nil {
		fmt.Println(err)
		os.Exit(1) //nolint:gocritic
	}
}

// convert writes the rows of a spreadsheet as fixture records.
func convert(o *options) error {
	rows, err := api.LoadSheet(o.xlsx, o.sheet)
	if err != nil {
		return err
	}

	records, err := api.RecordsFromRows(rows)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(records)
}

func loadConfig(o *options) (*api.TestConfig, func(), error) {
	if o.stub {
		backend := stub.New()

		return backend.Config(), backend.Close, nil
	}

	config, err := api.LoadTestConfig()
	if err != nil {
		return nil, nil, err
	}

	if err := config.Require(api.EnvTokenBaseURL, api.EnvShopURL); err != nil {
		return nil, nil, err
	}

	return config, func() {}, nil
}

func selectRecords(o *options) ([]api.OfferRequestRecord, error) {
	records, err := api.LoadOfferRequests(o.testData)
	if err != nil {
		return nil, err
	}

	if o.record == "" {
		return records, nil
	}

	for _, record := range records {
		if record.Name == o.record {
			return []api.OfferRequestRecord{record}, nil
		}
	}

	return nil, fmt.Errorf("no record named %q in %s", o.record, o.testData)
}

// probe acquires a token and runs GetOffers for every selected record,
// printing one line per record.
func probe(ctx context.Context, o *options) error {
	records, err := selectRecords(o)
	if err != nil {
		return err
	}

	config, closer, err := loadConfig(o)
	if err != nil {
		return err
	}

	defer closer()

	m := metrics.NewProbeMetrics()

	clientOpts := []api.ClientOption{
		api.WithConfig(config),
		api.WithLogWriter(os.Stderr),
	}

	start := time.Now()
	token, err := api.NewTokenService(config, clientOpts...).GetAccessToken(ctx)
	m.ObserveOperation("token", time.Since(start))

	if err != nil {
		return errors.Join(err, writeMetrics(o, m))
	}

	services := api.NewServices(config, token, clientOpts...).Reuse()
	defer services.Close()

	failed := false

	for _, record := range records {
		skus, err := probeRecord(ctx, services, m, record)
		m.ObserveRecord(record.Name, skus, err)

		if err != nil {
			fmt.Printf("FAIL %s (%s): %v\n", record.Name, record.Route(), err)

			failed = true
		}
	}

	if err := writeMetrics(o, m); err != nil {
		return err
	}

	if failed {
		return errProbeFailed
	}

	return nil
}

func writeMetrics(o *options, m *metrics.ProbeMetrics) error {
	if o.metrics == "" {
		return nil
	}

	return m.WriteTextfile(o.metrics)
}

func probeRecord(ctx context.Context, services *api.Services, m *metrics.ProbeMetrics, record api.OfferRequestRecord) (int, error) {
	start := time.Now()
	raw, err := services.GetOffers(ctx, record.Request)
	m.ObserveOperation(api.OpGetOffers.Name, time.Since(start))

	if err != nil {
		return 0, err
	}

	if err := api.ValidateOffersJSON(raw).Err(); err != nil {
		return 0, err
	}

	skus := api.FirstSKUs(raw)
	if len(skus) == 0 || skus[0].SKUId == "" {
		return 0, errors.New("no bookable SKUs in connections[0].flightProducts[0]")
	}

	fmt.Printf("PASS %s (%s): %d SKUs, first %s\n", record.Name, record.Route(), len(skus), skus[0].SKUId)

	return len(skus), nil
}
