//nolint:lll
package api

import (
	"fmt"
	"net/http"

	"github.com/vocdoni/tallyvault/tallyerr"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap that code was used in the past for some error and shouldn't be reused.
var (
	ErrResourceNotFound      = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody         = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedElectionID   = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound      = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrInvalidArgument       = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid argument")}
	ErrInvalidState          = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("operation not valid in current state")}
	ErrDuplicateTrustee      = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("trustee already submitted")}
	ErrDuplicateBallot       = Error{Code: 40011, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("ballot already submitted")}
	ErrInsufficientShares    = Error{Code: 40012, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("insufficient shares")}
	ErrInsufficientTrustees  = Error{Code: 40013, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("insufficient trustee partials")}
	ErrInvalidCiphertext     = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid ciphertext")}
	ErrTallyInconsistent     = Error{Code: 40015, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("tally is inconsistent")}
	ErrNotAuthorized         = Error{Code: 40016, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("not authorized")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)

// errorFromKind maps a tallyerr.Kind-carrying error returned by the tally
// package to the stable HTTP Error this API promises never to renumber,
// following the teacher's own handler-local error table
// (api/errors_definition.go) generalized from a fixed error->Error map to a
// Kind->Error map, since tallyerr's taxonomy is the tallying core's own
// stable error contract rather than one this transport layer should
// duplicate per operation.
func errorFromKind(err error) Error {
	var base Error
	switch tallyerr.KindOf(err) {
	case tallyerr.NotFound:
		base = ErrResourceNotFound
	case tallyerr.InvalidArgument:
		base = ErrInvalidArgument
	case tallyerr.InvalidState:
		base = ErrInvalidState
	case tallyerr.DuplicateTrustee:
		base = ErrDuplicateTrustee
	case tallyerr.DuplicateBallot:
		base = ErrDuplicateBallot
	case tallyerr.InsufficientShares:
		base = ErrInsufficientShares
	case tallyerr.InsufficientTrustees:
		base = ErrInsufficientTrustees
	case tallyerr.InvalidCiphertext:
		base = ErrInvalidCiphertext
	case tallyerr.TallyInconsistent:
		base = ErrTallyInconsistent
	case tallyerr.NotAuthorized:
		base = ErrNotAuthorized
	default:
		base = ErrGenericInternalServerError
	}
	return base.WithErr(err)
}
