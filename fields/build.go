package fields

import (
	"errors"
	"fmt"
	"slices"

	"hermannm.dev/wrap"
)

// Build derives the field registry from a data source model. The model is not modified.
func Build(model Model) (Fields, error) {
	configs := model.Fields
	if configs == nil {
		if model.ESMapping == nil {
			return Fields{}, ConfigurationError{
				Err: errors.New("data source model must declare either fields or an engine mapping"),
			}
		}
		configs = configsFromMapping(*model.ESMapping)
	}

	keys := make([]string, 0, len(configs))
	for key := range configs {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	fieldList := make([]Field, 0, len(keys))
	var errs []error
	for _, key := range keys {
		field, err := deriveField(key, configs[key], model)
		if err != nil {
			errs = append(errs, wrap.Errorf(err, "invalid field '%s'", key))
			continue
		}
		fieldList = append(fieldList, field)
	}

	if len(errs) != 0 {
		return Fields{}, ConfigurationError{
			Err: wrap.Errors("invalid data source model", errs...),
		}
	}

	return newFields(fieldList, model.ESMappingKey), nil
}

// FromMapping derives fields from an engine mapping, using the sub-field defaults and mapping key
// of the given model. Any explicit fields in the model are ignored.
func FromMapping(mapping Mapping, model Model) (Fields, error) {
	model.Fields = nil
	model.ESMapping = &mapping
	return Build(model)
}

func deriveField(key string, config Config, model Model) (Field, error) {
	owners := 0
	for _, owner := range []string{config.ESNestedPath, config.ESParentType, config.ESChildType} {
		if owner != "" {
			owners++
		}
	}
	if owners > 1 {
		return Field{}, errors.New(
			"field can only belong to one of a nested path, a parent type or a child type",
		)
	}

	fieldType := config.Type
	if fieldType == 0 {
		fieldType = TypeString
	} else if !fieldType.IsValid() {
		return Field{}, fmt.Errorf("unsupported field type %d", fieldType)
	}

	storageName := config.ESName
	if storageName == "" {
		storageName = key
	}

	field := Field{
		Key:         key,
		Type:        fieldType,
		StorageName: storageName,
		Scope:       RootScope,
		MultiValued: fieldType != TypeString,
		Duration:    config.Duration,
	}
	if config.ESMultiSplit != nil {
		field.MultiValued = *config.ESMultiSplit
	}

	switch {
	case config.ESNestedPath != "":
		field.Scope = NestedScope(config.ESNestedPath)
		field.NestedPath = config.ESNestedPath
		field.FullNestedPath = config.ESNestedPath
		if model.ESMappingKey != "" {
			field.FullNestedPath = model.ESMappingKey + "." + config.ESNestedPath
		}
	case config.ESParentType != "":
		field.Scope = ParentScope(config.ESParentType)
	case config.ESChildType != "":
		field.Scope = ChildScope(config.ESChildType)
	}

	subFields := model.ESStringSubFields
	field.SearchName = joinPath(
		field.NestedPath, subFieldName(storageName, fieldType, config.ESSearchSubField, subFields.Search),
	)
	field.FilterName = joinPath(
		field.NestedPath, subFieldName(storageName, fieldType, config.ESFilterSubField, subFields.Filter),
	)
	field.AggName = joinPath(
		field.FullNestedPath, subFieldName(storageName, fieldType, config.ESAggSubField, subFields.Agg),
	)

	return field, nil
}

func subFieldName(storageName string, fieldType Type, override string, stringDefault string) string {
	if override != "" {
		return storageName + "." + override
	}
	if fieldType == TypeString && stringDefault != "" {
		return storageName + "." + stringDefault
	}
	return storageName
}

func joinPath(prefix string, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
