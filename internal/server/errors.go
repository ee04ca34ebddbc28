package server

import (
	"fmt"
	"net/http"
)

// Failure is a dispatch outcome other than success. Failures with the same
// Code match under errors.Is regardless of the wrapped cause.
type Failure struct {
	Code   string
	Status int
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Code, f.Err)
	}
	return f.Code
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Code == f.Code
}

// wrap returns a copy of f carrying err as its cause.
func (f *Failure) wrap(err error) *Failure {
	c := *f
	c.Err = err
	return &c
}

var (
	ErrBadCredential     = &Failure{Code: "bad_credential", Status: http.StatusBadRequest, Reason: "Bad Request: malformed credential"}
	ErrMissingIdentity   = &Failure{Code: "missing_identity", Status: http.StatusBadRequest, Reason: "Bad Request: invalid request"}
	ErrInvalidIdentifier = &Failure{Code: "invalid_identifier", Status: http.StatusBadRequest, Reason: "Bad Request: invalid identifier"}
	ErrGameNotFound      = &Failure{Code: "game_not_found", Status: http.StatusNotFound, Reason: "Not Found: game not found"}
	ErrNotAMember        = &Failure{Code: "not_a_member", Status: http.StatusBadRequest, Reason: "Bad Request: player not in game"}
	ErrForbidden         = &Failure{Code: "forbidden", Status: http.StatusBadRequest, Reason: "Bad Request: dungeon master only"}
	ErrRouteNotSupported = &Failure{Code: "route_not_supported", Status: http.StatusBadRequest, Reason: "Bad Request: Request not supported"}
	ErrInvalidBody       = &Failure{Code: "invalid_body", Status: http.StatusBadRequest, Reason: "Bad Request: body must be a JSON object"}
	ErrBodyTooLarge      = &Failure{Code: "body_too_large", Status: http.StatusRequestEntityTooLarge, Reason: "Request Entity Too Large: body exceeds 1 MiB"}
	ErrStoreFailure      = &Failure{Code: "store_failure", Status: http.StatusInternalServerError, Reason: "Internal Server Error: storage failure"}
	ErrReferenceFailure  = &Failure{Code: "reference_failure", Status: http.StatusBadGateway, Reason: "Bad Gateway: rules reference unavailable"}
)
