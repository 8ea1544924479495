package openai

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects T into a strict JSON schema accepted by the
// structured-output mode: every object closed, every property required.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	strictify(m)
	return m
}

func strictify(schema map[string]any) {
	if t, _ := schema["type"].(string); t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	delete(schema, "$schema")
	delete(schema, "$id")

	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				strictify(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strictify(items)
	}
}
