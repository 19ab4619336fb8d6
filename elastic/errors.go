package elastic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"hermannm.dev/wrap"
)

const elasticIndexNotFoundException = "index_not_found_exception"

// Turns the body of a failed response into an error listing the engine's root causes. A missing
// index gives ErrIndexNotFound, and bodies that are not error objects give a plain error with the
// response status.
func decodeElasticError(res *esapi.Response) error {
	content, err := io.ReadAll(res.Body)
	if err != nil {
		return wrap.Errorf(err, "failed to read error response (status %d)", res.StatusCode)
	}

	var elasticErr types.ElasticsearchError
	if err := json.Unmarshal(content, &elasticErr); err != nil || elasticErr.ErrorCause.Type == "" {
		return fmt.Errorf("status %d: %s", res.StatusCode, content)
	}

	cause := elasticErr.ErrorCause
	if cause.Type == elasticIndexNotFoundException {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, describeCause(cause))
	}

	status := elasticErr.Status
	if status == 0 {
		status = res.StatusCode
	}
	message := fmt.Sprintf("%s [status %d]", describeCause(cause), status)

	if len(cause.RootCause) == 0 {
		return errors.New(message)
	}

	rootCauses := make([]error, len(cause.RootCause))
	for i, rootCause := range cause.RootCause {
		rootCauses[i] = errors.New(describeCause(rootCause))
	}
	return wrap.Errors(message, rootCauses...)
}

// "reason (type)", or just the type when the engine gives no reason.
func describeCause(cause types.ErrorCause) string {
	if cause.Reason == nil {
		return cause.Type
	}
	return fmt.Sprintf("%s (%s)", *cause.Reason, cause.Type)
}
