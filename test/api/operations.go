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
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation is a fixed GraphQL document sent by one of the booking services.
type Operation struct {
	// Name is the operation name declared in the document.
	Name string
	// Kind is query or mutation.
	Kind ast.Operation
	// Field is the top level field holding the result.
	Field string
	// Variable is the name of the single input variable.
	Variable string
	Document string
}

var (
	OpGetOffers = mustParseOperation(`
    query GetOffers($req: OfferRequest!) {
      getOffers(OfferRequest: $req) {
        response {
          connections {
            flightProducts {
              flightSKUs { SKUId SKUCode SKUName seatsLeft }
            }
          }
        }
      }
    }`)

	OpCheckoutInitiate = mustParseOperation(`
    mutation CheckoutInitiate($input: CheckoutInitiateInput!) {
      checkoutInitiate(input: $input) {
        checkoutId
        totals { amount currency }
      }
    }`)

	OpCheckoutPassengers = mustParseOperation(`
    mutation CheckoutPassengers($input: CheckoutPassengersInput!) {
      checkoutPassengers(input: $input) {
        checkoutId
        passengers { id type firstName lastName }
      }
    }`)

	OpCheckoutUpdate = mustParseOperation(`
    mutation CheckoutUpdate($input: CheckoutUpdateInput!) {
      checkoutUpdate(input: $input) {
        checkoutId
        totals { amount currency }
      }
    }`)

	OpCheckoutConfirm = mustParseOperation(`
    mutation CheckoutConfirm($input: CheckoutConfirmInput!) {
      checkoutConfirm(input: $input) {
        orderId
        totals { amount currency }
        status
      }
    }`)

	OpRetrieveOrder = mustParseOperation(`
    query RetrieveOrder($input: RetrieveOrderInput!) {
      retrieveOrder(input: $input) {
        orderId
        status
        passengers { id firstName lastName }
        segments { id origin destination }
        totals { amount currency }
      }
    }`)
)

// Operations lists every operation in checkout order, shop first.
func Operations() []Operation {
	return []Operation{
		OpGetOffers,
		OpCheckoutInitiate,
		OpCheckoutPassengers,
		OpCheckoutUpdate,
		OpCheckoutConfirm,
		OpRetrieveOrder,
	}
}

// parseOperation extracts the single operation of a document.
func parseOperation(document string) (Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "operation", Input: document})
	if err != nil {
		return Operation{}, fmt.Errorf("parsing graphql document: %w", err)
	}

	if len(doc.Operations) != 1 {
		return Operation{}, fmt.Errorf("expected exactly one operation, got %d", len(doc.Operations))
	}

	def := doc.Operations[0]

	op := Operation{
		Name:     def.Name,
		Kind:     def.Operation,
		Document: document,
	}

	if len(def.VariableDefinitions) == 1 {
		op.Variable = def.VariableDefinitions[0].Variable
	}

	for _, selection := range def.SelectionSet {
		if field, ok := selection.(*ast.Field); ok {
			op.Field = field.Name
			if field.Alias != "" {
				op.Field = field.Alias
			}

			break
		}
	}

	return op, nil
}

func mustParseOperation(document string) Operation {
	op, err := parseOperation(document)
	if err != nil {
		panic(err)
	}

	return op
}

// operationName returns the declared name of a document's operation, or an
// empty string for anonymous or unparsable documents.
func operationName(document string) string {
	op, err := parseOperation(document)
	if err != nil {
		return ""
	}

	return op.Name
}
