package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// JSONResponse is the standard JSON response envelope.
type JSONResponse struct {
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// jsonResponse implements Response for JSON rendering
type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON creates a 200 JSON response with the given payload.
func JSON(code string, data any) Response {
	return jsonResponse{
		status: http.StatusOK,
		body: JSONResponse{
			Code: code,
			Data: data,
		},
	}
}

// JSONStatus creates a JSON response with an explicit status code.
func JSONStatus(status int, code string, data any) Response {
	return jsonResponse{
		status: status,
		body: JSONResponse{
			Code: code,
			Data: data,
		},
	}
}

// JSONError creates a JSON error response from an error. HTTPError values
// keep their status code and key; everything else becomes a 500 with the
// underlying message hidden from the client.
func JSONError(err error) Response {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := http.StatusText(status)

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		code = httpErr.Key
		message = http.StatusText(httpErr.Code)
	}

	return jsonResponse{
		status: status,
		body: JSONResponse{
			Code: code,
			Error: &ErrorDetail{
				Code:    code,
				Message: message,
			},
		},
	}
}
