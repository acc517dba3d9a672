package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hamed0406/servicepoller/internal/domain"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody = errors.New("request body is empty")
	errBadJSON   = errors.New("request body is not valid JSON")
	errBadID     = errors.New("id must be a positive integer")
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeValidation(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:  "validation failed",
		Fields: domain.FieldErrors(err),
	})
}

// decodeInput reads {name, url}. Unknown fields are ignored.
func decodeInput(w http.ResponseWriter, r *http.Request) (domain.ServiceInput, error) {
	var in domain.ServiceInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return in, errEmptyBody
		}
		return in, errBadJSON
	}
	// exactly one JSON value, nothing after it
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ServiceInput{}, errBadJSON
	}
	return in.Normalize(), nil
}

func pathID(r *http.Request) (domain.ServiceID, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, errBadID
	}
	return domain.ServiceID(n), nil
}
