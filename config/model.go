package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/wrap"
)

// ReadModel reads the field model of a data source from a JSON file, or a YAML file if the path
// ends in .yaml or .yml. Both formats use the same keys.
func ReadModel(path string) (fields.Model, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return fields.Model{}, wrap.Errorf(err, "failed to read field model file '%s'", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		content, err = yamlToJSON(content)
		if err != nil {
			return fields.Model{}, wrap.Errorf(err, "failed to parse field model file '%s'", path)
		}
	}

	var model fields.Model
	if err := json.Unmarshal(content, &model); err != nil {
		return fields.Model{}, wrap.Errorf(err, "invalid field model in '%s'", path)
	}

	return model, nil
}

// Field types, durations and mappings decode from JSON, so YAML goes through JSON.
func yamlToJSON(content []byte) ([]byte, error) {
	var document any
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, err
	}
	return json.Marshal(document)
}
