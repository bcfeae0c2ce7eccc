package gateway

import "net/http"

// apiError pairs an HTTP status with a message safe to return to the
// client, matching the error-kind-to-status policy: BadRequest→400,
// NotFound→404, ProcessFailed/StorageFailed→500.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func badRequest(msg string) *apiError  { return &apiError{status: http.StatusBadRequest, msg: msg} }
func notFound(msg string) *apiError    { return &apiError{status: http.StatusNotFound, msg: msg} }
func serverError(msg string) *apiError { return &apiError{status: http.StatusInternalServerError, msg: msg} }

func writeError(w http.ResponseWriter, err error) {
	if ae, ok := err.(*apiError); ok {
		http.Error(w, ae.msg, ae.status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
