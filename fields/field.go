package fields

import (
	"slices"
	"strings"
)

// Config describes a single grid field, as given by the grid's field options.
type Config struct {
	Type Type `json:"type"`
	// Storage name in the engine document. Defaults to the field key.
	ESName string `json:"esName,omitempty"`
	// Path of the nested object the field is stored in.
	ESNestedPath string `json:"esNestedPath,omitempty"`
	// Type of the parent document the field is stored in.
	ESParentType string `json:"esParentType,omitempty"`
	// Type of the child documents the field is stored in.
	ESChildType      string `json:"esChildType,omitempty"`
	ESSearchSubField string `json:"esSearchSubField,omitempty"`
	ESFilterSubField string `json:"esFilterSubField,omitempty"`
	ESAggSubField    string `json:"esAggSubField,omitempty"`
	// Whether rows should be split on each value when the field holds several. Defaults to true for
	// non-string fields.
	ESMultiSplit *bool    `json:"esMultiSplit,omitempty"`
	Duration     Duration `json:"duration,omitempty"`
}

// SubFields names the default sub-fields used for string fields in each usage.
type SubFields struct {
	Search string `json:"search,omitempty" yaml:"search"`
	Filter string `json:"filter,omitempty" yaml:"filter"`
	Agg    string `json:"agg,omitempty"    yaml:"agg"`
}

// Model is the field configuration of a data source. Either Fields or ESMapping must be set.
type Model struct {
	Fields    map[string]Config `json:"fields,omitempty"`
	ESMapping *Mapping          `json:"esMapping,omitempty"`
	// Prefix of every nested path in the mapping, when the searched documents are wrapped in a
	// top-level object.
	ESMappingKey      string    `json:"esMappingKey,omitempty"`
	ESStringSubFields SubFields `json:"esStringSubFields"`
}

// Field is a fully derived field descriptor.
type Field struct {
	Key         string `json:"key"`
	Type        Type   `json:"type"`
	StorageName string `json:"storageName"`
	Scope       Scope  `json:"scope"`
	// Set for nested fields only.
	NestedPath     string   `json:"nestedPath,omitempty"`
	FullNestedPath string   `json:"fullNestedPath,omitempty"`
	SearchName     string   `json:"searchName"`
	FilterName     string   `json:"filterName"`
	AggName        string   `json:"aggName"`
	MultiValued    bool     `json:"multiValued"`
	Duration       Duration `json:"duration,omitempty"`
}

// Fields is an immutable registry of derived fields, keyed by grid field key.
type Fields struct {
	byKey        map[string]Field
	keys         []string
	nestedPaths  []string
	mappingKey   string
	relatedTypes []Scope
}

func newFields(fieldList []Field, mappingKey string) Fields {
	fields := Fields{byKey: make(map[string]Field, len(fieldList)), mappingKey: mappingKey}

	for _, field := range fieldList {
		fields.byKey[field.Key] = field
		fields.keys = append(fields.keys, field.Key)

		switch field.Scope.Kind {
		case ScopeNested:
			if !slices.Contains(fields.nestedPaths, field.NestedPath) {
				fields.nestedPaths = append(fields.nestedPaths, field.NestedPath)
			}
		case ScopeParent, ScopeChild:
			if !slices.Contains(fields.relatedTypes, field.Scope) {
				fields.relatedTypes = append(fields.relatedTypes, field.Scope)
			}
		}
	}

	slices.Sort(fields.keys)
	slices.Sort(fields.nestedPaths)
	slices.SortFunc(fields.relatedTypes, func(a Scope, b Scope) int {
		return strings.Compare(a.Path, b.Path)
	})
	return fields
}

func (fields Fields) Get(key string) (Field, bool) {
	field, ok := fields.byKey[key]
	return field, ok
}

func (fields Fields) Len() int {
	return len(fields.keys)
}

// All returns every field, ordered by key.
func (fields Fields) All() []Field {
	all := make([]Field, 0, len(fields.keys))
	for _, key := range fields.keys {
		all = append(all, fields.byKey[key])
	}
	return all
}

// InScope returns the fields owned by the given scope, ordered by key.
func (fields Fields) InScope(scope Scope) []Field {
	var inScope []Field
	for _, key := range fields.keys {
		if field := fields.byKey[key]; field.Scope == scope {
			inScope = append(inScope, field)
		}
	}
	return inScope
}

// NestedPaths returns every distinct nested path, sorted.
func (fields Fields) NestedPaths() []string {
	return slices.Clone(fields.nestedPaths)
}

// RelatedTypes returns the parent and child document scopes referenced by any field.
func (fields Fields) RelatedTypes() []Scope {
	return slices.Clone(fields.relatedTypes)
}

// FullPath prefixes a nested path with the model's mapping key, if any.
func (fields Fields) FullPath(nestedPath string) string {
	if fields.mappingKey == "" || nestedPath == "" {
		return nestedPath
	}
	return fields.mappingKey + "." + nestedPath
}

// IsNestedPath reports whether the given path is the nested path of at least one field.
func (fields Fields) IsNestedPath(path string) bool {
	return slices.Contains(fields.nestedPaths, path)
}

// ParentNestedPath returns the closest nested path enclosing the given one, or "" if the given
// path is a top-level nested path.
func (fields Fields) ParentNestedPath(nestedPath string) string {
	parent := ""
	for _, candidate := range fields.nestedPaths {
		if IsDescendantPath(nestedPath, candidate) && len(candidate) > len(parent) {
			parent = candidate
		}
	}
	return parent
}

// CommonNestedPath returns the deepest nested path that encloses (or equals) both given paths,
// or "" if only the root encloses both.
func (fields Fields) CommonNestedPath(a string, b string) string {
	common := ""
	for _, candidate := range fields.nestedPaths {
		if isSameOrDescendantPath(a, candidate) && isSameOrDescendantPath(b, candidate) &&
			len(candidate) > len(common) {
			common = candidate
		}
	}
	return common
}

// IsDescendantPath reports whether path lies strictly below ancestor in a dotted path hierarchy.
func IsDescendantPath(path string, ancestor string) bool {
	return strings.HasPrefix(path, ancestor+".")
}

func isSameOrDescendantPath(path string, ancestor string) bool {
	return path == ancestor || IsDescendantPath(path, ancestor)
}
