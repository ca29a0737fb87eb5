package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodySize = 1 << 20 // 1 MB

// Decode reads and decodes the JSON body of an HTTP request into a value of T.
// It limits the request body size, disallows unknown JSON fields, and rejects
// bodies containing more than a single JSON value. An empty body decodes to
// the zero T.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var data T
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		return data, fmt.Errorf("request: decode: %w", err)
	}

	var trailing struct{}
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return data, fmt.Errorf("request: decode: body must contain a single JSON value")
		}
		return data, fmt.Errorf("request: decode: %w", err)
	}

	return data, nil
}

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func newErrResp(msg string) errorResponse {
	return errorResponse{Error: msg}
}
