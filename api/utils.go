package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"
)

func sendClientError(res http.ResponseWriter, err error, message string) {
	sendError(res, err, message, http.StatusBadRequest)
}

func sendServerError(res http.ResponseWriter, err error, message string) {
	sendError(res, err, message, http.StatusInternalServerError)
}

func sendError(res http.ResponseWriter, err error, message string, statusCode int) {
	if statusCode >= http.StatusInternalServerError && err != nil {
		log.ErrorCause(err, message)
	}

	if err != nil {
		message = wrap.Error(err, message).Error()
	}
	log.Debug("sending error response", slog.Int("status", statusCode), slog.String("error", message))

	http.Error(res, message, statusCode)
}

func sendJSON(res http.ResponseWriter, value any) {
	content, err := json.Marshal(value)
	if err != nil {
		sendServerError(res, err, "failed to serialize response")
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(content); err != nil {
		log.ErrorCause(err, "failed to write response")
	}
}
