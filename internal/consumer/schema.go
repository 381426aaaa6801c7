package consumer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const envelopeSchema = `{
  "type": "object",
  "required": ["type", "advertiser_id", "ts_event", "payload"],
  "properties": {
    "type": {"enum": ["visit", "conversion", "exposure"]},
    "agency_id": {"type": "string"},
    "advertiser_id": {"type": "string", "minLength": 1},
    "campaign_id": {"type": "string"},
    "ts_event": {"type": "string", "format": "date-time"},
    "payload": {"type": "object"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "visit"}}},
      "then": {"properties": {"payload": {
        "required": ["client_id", "impression_id"],
        "properties": {
          "client_id": {"type": "string", "minLength": 1},
          "referrer": {"type": "string"},
          "impression_id": {"type": "string"}
        }
      }}}
    },
    {
      "if": {"properties": {"type": {"const": "conversion"}}},
      "then": {"properties": {"payload": {
        "required": ["device_id", "impression_id"],
        "properties": {
          "device_id": {"type": "string", "minLength": 1},
          "impression_id": {"type": "string"},
          "is_lead": {"type": "boolean"},
          "is_purchase": {"type": "boolean"}
        }
      }}}
    },
    {
      "if": {"properties": {"type": {"const": "exposure"}}},
      "then": {"properties": {"payload": {
        "required": ["device_id"],
        "properties": {
          "device_id": {"type": "string", "minLength": 1},
          "impression_id": {"type": "string"},
          "campaign_name": {"type": "string"}
        }
      }}}
    }
  ]
}`

// envelopeValidator checks raw stream messages before they are decoded.
type envelopeValidator struct {
	schema *jsonschema.Schema
}

func newEnvelopeValidator() (*envelopeValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true

	if err := compiler.AddResource("envelope.json", strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("envelope.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &envelopeValidator{schema: schema}, nil
}

func (v *envelopeValidator) Validate(raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	return nil
}
