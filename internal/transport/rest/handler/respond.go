package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"quizlive/internal/model"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string          `json:"error"`
	Kind  model.ErrorKind `json:"kind,omitempty"`
	Field string          `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps an error kind to its HTTP status. Requests reaching a
// handler already carry a valid token, so an authorization failure is a 403.
func writeDomainError(w http.ResponseWriter, err error) {
	writeDomainErrorStatus(w, err, StatusOf(err, http.StatusForbidden))
}

func writeDomainErrorStatus(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{Error: err.Error(), Kind: model.KindOf(err)}
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		resp.Field = domainErr.Field
	}
	writeJSON(w, status, resp)
}

// StatusOf returns the HTTP status for err. unauthorized is used for
// Unauthorized errors: 401 where the request is the credential check, 403
// once a token has been accepted.
func StatusOf(err error, unauthorized int) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return unauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindRaceLost:
		return http.StatusConflict
	case model.KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
