package fields

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"hermannm.dev/devlog/log"
)

// Mapping is the subset of an engine index mapping needed to derive fields.
type Mapping struct {
	Properties map[string]Property `json:"properties"`
}

type Property struct {
	Type       string              `json:"type,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// UnmarshalJSON accepts the bare type string shorthand (e.g. "value": "string") in addition to
// full property objects.
func (property *Property) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) != 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &property.Type)
	}

	type plainProperty Property
	var plain plainProperty
	if err := json.Unmarshal(trimmed, &plain); err != nil {
		return err
	}

	*property = Property(plain)
	return nil
}

func configsFromMapping(mapping Mapping) map[string]Config {
	configs := make(map[string]Config)
	collectMappingConfigs(configs, mapping.Properties, "", "", "")
	return configs
}

// Nested properties open a new nested scope, whose path includes any plain objects crossed on the
// way. Plain objects are flattened into the enclosing scope.
func collectMappingConfigs(
	configs map[string]Config,
	properties map[string]Property,
	keyPrefix string,
	storagePrefix string,
	nestedPath string,
) {
	for name, property := range properties {
		key := keyPrefix + identifierKey(name)

		switch {
		case property.Type == "nested":
			if len(property.Properties) == 0 {
				continue
			}
			collectMappingConfigs(
				configs,
				property.Properties,
				key+"_",
				"",
				joinPath(nestedPath, joinPath(storagePrefix, name)),
			)
		case property.Type == "object" || property.Type == "":
			if len(property.Properties) == 0 {
				continue
			}
			collectMappingConfigs(
				configs, property.Properties, key+"_", joinPath(storagePrefix, name), nestedPath,
			)
		default:
			configs[key] = Config{
				Type:         typeFromMapping(key, property.Type),
				ESName:       joinPath(storagePrefix, name),
				ESNestedPath: nestedPath,
			}
		}
	}
}

func typeFromMapping(key string, mappingType string) Type {
	switch mappingType {
	case "string", "text", "keyword":
		return TypeString
	case "float", "double", "integer", "long", "short", "byte",
		"half_float", "scaled_float", "unsigned_long":
		return TypeNumber
	case "date", "date_nanos":
		return TypeDate
	case "boolean":
		return TypeBoolean
	default:
		log.Debug(
			"unrecognized mapping type, treating field as string",
			slog.String("field", key),
			slog.String("type", mappingType),
		)
		return TypeString
	}
}

// Field keys must be usable as plain property names in grid rows.
func identifierKey(name string) string {
	return strings.Map(func(char rune) rune {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9',
			char == '_', char == '$':
			return char
		default:
			return '_'
		}
	}, name)
}
