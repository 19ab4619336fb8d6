package fields_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"hermannm.dev/gridsearch/fields"
)

func TestBuildDerivesNames(t *testing.T) {
	model := fields.Model{
		ESMappingKey:      "organization",
		ESStringSubFields: fields.SubFields{Filter: "lowercase", Agg: "raw"},
		Fields: map[string]fields.Config{
			"zipCode": {Type: fields.TypeString, ESNestedPath: "addresses"},
			"companyName": {
				Type:             fields.TypeString,
				ESSearchSubField: "french",
			},
			"siblings":  {Type: fields.TypeNumber},
			"motherAge": {Type: fields.TypeNumber, ESName: "age", ESParentType: "person"},
		},
	}

	registry, err := fields.Build(model)
	require.NoError(t, err)

	want := []fields.Field{
		{
			Key:         "companyName",
			Type:        fields.TypeString,
			StorageName: "companyName",
			Scope:       fields.RootScope,
			SearchName:  "companyName.french",
			FilterName:  "companyName.lowercase",
			AggName:     "companyName.raw",
		},
		{
			Key:         "motherAge",
			Type:        fields.TypeNumber,
			StorageName: "age",
			Scope:       fields.ParentScope("person"),
			SearchName:  "age",
			FilterName:  "age",
			AggName:     "age",
			MultiValued: true,
		},
		{
			Key:         "siblings",
			Type:        fields.TypeNumber,
			StorageName: "siblings",
			Scope:       fields.RootScope,
			SearchName:  "siblings",
			FilterName:  "siblings",
			AggName:     "siblings",
			MultiValued: true,
		},
		{
			Key:            "zipCode",
			Type:           fields.TypeString,
			StorageName:    "zipCode",
			Scope:          fields.NestedScope("addresses"),
			NestedPath:     "addresses",
			FullNestedPath: "organization.addresses",
			SearchName:     "addresses.zipCode",
			FilterName:     "addresses.zipCode.lowercase",
			AggName:        "organization.addresses.zipCode.raw",
		},
	}

	if diff := cmp.Diff(want, registry.All()); diff != "" {
		t.Fatalf("derived fields mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []string{"addresses"}, registry.NestedPaths())
	require.Equal(t, []fields.Scope{fields.ParentScope("person")}, registry.RelatedTypes())
	require.Equal(t, "organization.addresses", registry.FullPath("addresses"))
}

func TestBuildDefaultsStringType(t *testing.T) {
	multiSplit := true
	registry, err := fields.Build(fields.Model{
		Fields: map[string]fields.Config{
			"tags": {ESMultiSplit: &multiSplit},
		},
	})
	require.NoError(t, err)

	field, ok := registry.Get("tags")
	require.True(t, ok)
	require.Equal(t, fields.TypeString, field.Type)
	require.True(t, field.MultiValued)
}

func TestBuildRejectsSeveralOwners(t *testing.T) {
	_, err := fields.Build(fields.Model{
		Fields: map[string]fields.Config{
			"city": {ESNestedPath: "addresses", ESChildType: "office"},
		},
	})
	require.Error(t, err)

	var configErr fields.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	require.Contains(t, err.Error(), "city")
}

func TestBuildRequiresModel(t *testing.T) {
	_, err := fields.Build(fields.Model{})
	require.Error(t, err)
	require.ErrorAs(t, err, new(fields.ConfigurationError))
	require.Contains(t, err.Error(), "model")
}

func TestBuildLeavesModelUntouched(t *testing.T) {
	configs := map[string]fields.Config{"city": {Type: fields.TypeString}}
	model := fields.Model{
		Fields:            configs,
		ESStringSubFields: fields.SubFields{Filter: "lowercase"},
	}

	_, err := fields.Build(model)
	require.NoError(t, err)
	require.Equal(t, map[string]fields.Config{"city": {Type: fields.TypeString}}, model.Fields)
}

func TestFromMapping(t *testing.T) {
	mappingJSON := `{
		"properties": {
			"company-name": {"type": "string"},
			"siblings": {"type": "integer"},
			"birthDate": {"type": "date"},
			"active": {"type": "boolean"},
			"location": {"type": "geo_point"},
			"empty": {"properties": {}},
			"info": {
				"properties": {
					"size": {"type": "long"}
				}
			},
			"addresses": {
				"type": "nested",
				"properties": {
					"country": {"type": "keyword"},
					"contact": {
						"properties": {
							"telephones": {
								"type": "nested",
								"properties": {
									"value": "string"
								}
							}
						}
					}
				}
			}
		}
	}`

	var mapping fields.Mapping
	require.NoError(t, json.Unmarshal([]byte(mappingJSON), &mapping))

	registry, err := fields.FromMapping(mapping, fields.Model{
		ESMappingKey:      "organization",
		ESStringSubFields: fields.SubFields{Filter: "lowercase"},
	})
	require.NoError(t, err)

	type summary struct {
		Type        fields.Type
		StorageName string
		NestedPath  string
		FilterName  string
	}
	got := make(map[string]summary)
	for _, field := range registry.All() {
		got[field.Key] = summary{field.Type, field.StorageName, field.NestedPath, field.FilterName}
	}

	want := map[string]summary{
		"company_name": {fields.TypeString, "company-name", "", "company-name.lowercase"},
		"siblings":     {fields.TypeNumber, "siblings", "", "siblings"},
		"birthDate":    {fields.TypeDate, "birthDate", "", "birthDate"},
		"active":       {fields.TypeBoolean, "active", "", "active"},
		"location":     {fields.TypeString, "location", "", "location.lowercase"},
		"info_size":    {fields.TypeNumber, "info.size", "", "info.size"},
		"addresses_country": {
			fields.TypeString, "country", "addresses", "addresses.country.lowercase",
		},
		"addresses_contact_telephones_value": {
			fields.TypeString,
			"value",
			"addresses.contact.telephones",
			"addresses.contact.telephones.value.lowercase",
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields from mapping mismatch (-want +got):\n%s", diff)
	}

	require.Equal(
		t,
		"organization.addresses.contact.telephones",
		registry.FullPath("addresses.contact.telephones"),
	)
	require.Equal(t, "addresses", registry.ParentNestedPath("addresses.contact.telephones"))
	require.Equal(
		t, "addresses", registry.CommonNestedPath("addresses", "addresses.contact.telephones"),
	)
}
