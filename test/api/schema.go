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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rootContext is how gojsonschema names the document root.
const rootContext = "(root)"

// offersSchema is the structural contract of a getOffers response.
const offersSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["connections"],
  "properties": {
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["flightProducts"],
        "properties": {
          "flightProducts": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["flightSKUs"],
              "properties": {
                "flightSKUs": {
                  "type": "array",
                  "items": { "$ref": "#/definitions/flightSKU" }
                }
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "flightSKU": {
      "type": "object",
      "required": ["SKUId"],
      "properties": {
        "SKUId": { "type": "string" },
        "SKUCode": { "type": "string" },
        "SKUName": { "type": "string" },
        "seatsLeft": { "type": "integer", "minimum": 0 }
      }
    }
  }
}`

//nolint:gochecknoglobals
var offersContract = mustCompileSchema(offersSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Errorf("compiling schema: %w", err))
	}

	return compiled
}

// Violation is a single schema mismatch.
type Violation struct {
	// Path is the dotted location of the offending value, e.g.
	// connections.0.flightProducts.0.flightSKUs.0.seatsLeft.
	Path    string `json:"path"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of a structural check. A failed check is
// data, not an error; callers decide whether a mismatch is fatal.
type ValidationResult struct {
	Valid      bool
	Violations []Violation
}

// Err returns a validation error carrying every violation, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}

	return &Error{
		Kind:       KindValidation,
		Op:         OpGetOffers.Name,
		Violations: r.Violations,
	}
}

// ValidateOffers checks a decoded offers response.
func ValidateOffers(v any) ValidationResult {
	raw, err := json.Marshal(v)
	if err != nil {
		return ValidationResult{
			Violations: []Violation{{Path: rootContext, Type: "encoding", Message: err.Error()}},
		}
	}

	return ValidateOffersJSON(raw)
}

// ValidateOffersJSON checks a raw offers response.
func ValidateOffersJSON(raw []byte) ValidationResult {
	result, err := offersContract.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return ValidationResult{
			Violations: []Violation{{Path: rootContext, Type: "invalid_json", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return ValidationResult{Valid: true}
	}

	violations := make([]Violation, 0, len(result.Errors()))

	for _, resultErr := range result.Errors() {
		violations = append(violations, Violation{
			Path:    violationPath(resultErr),
			Type:    resultErr.Type(),
			Message: resultErr.Description(),
		})
	}

	return ValidationResult{Violations: violations}
}

// violationPath returns the full dotted path of a violation. Required errors
// point at the missing property rather than at its parent object.
func violationPath(resultErr gojsonschema.ResultError) string {
	path := strings.TrimPrefix(resultErr.Context().String(), rootContext+".")

	if resultErr.Type() != "required" {
		return path
	}

	property, ok := resultErr.Details()["property"].(string)
	if !ok || property == "" {
		return path
	}

	if path == rootContext {
		return property
	}

	return path + "." + property
}
