package api

import (
	"encoding/json"
	"net/http"

	"hermannm.dev/gridsearch/fields"
)

// Returns:
//   - JSON-encoded list of the served data source's fields
func (api GridAPI) GetFields(res http.ResponseWriter, req *http.Request) {
	sendJSON(res, api.source.Fields().All())
}

// Expects:
//   - body: JSON-encoded fields.Model
//
// Returns:
//   - JSON-encoded list of fields derived from the model
func (api GridAPI) DeriveFields(res http.ResponseWriter, req *http.Request) {
	var model fields.Model
	if err := json.NewDecoder(req.Body).Decode(&model); err != nil {
		sendClientError(res, err, "failed to parse field model from request body")
		return
	}

	registry, err := fields.Build(model)
	if err != nil {
		sendClientError(res, err, "invalid field model")
		return
	}

	sendJSON(res, registry.All())
}
