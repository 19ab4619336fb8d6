package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hermannm.dev/gridsearch/query"
	"hermannm.dev/gridsearch/result"
)

// Expects:
//   - body: JSON-encoded query.Request
//
// Returns:
//   - JSON-encoded result.Page
func (api GridAPI) Query(res http.ResponseWriter, req *http.Request) {
	var request query.Request
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		sendClientError(res, err, "failed to parse grid request from request body")
		return
	}

	page, err := api.source.Fetch(req.Context(), request)
	if err != nil {
		if errors.As(err, new(query.CompilationError)) {
			sendClientError(res, err, "invalid grid request")
		} else if errors.As(err, new(result.MaterializationError)) {
			sendServerError(res, err, "failed to build grid result")
		} else {
			sendServerError(res, err, "failed to fetch grid data")
		}
		return
	}

	sendJSON(res, page)
}

// Expects:
//   - body: JSON-encoded query.Request
//
// Returns:
//   - JSON-encoded search body for the request, without sending it
func (api GridAPI) Compile(res http.ResponseWriter, req *http.Request) {
	var request query.Request
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		sendClientError(res, err, "failed to parse grid request from request body")
		return
	}

	body, err := api.source.Compile(request)
	if err != nil {
		sendClientError(res, err, "invalid grid request")
		return
	}

	sendJSON(res, body)
}
