package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the configuration file format.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Config{})
	if schema == nil {
		return nil, fmt.Errorf("failed to reflect config schema")
	}
	schema.Title = "Grapple Arena Server Config"
	schema.Description = "TOML configuration consumed by the arena server. Keys match the JSON property names."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
