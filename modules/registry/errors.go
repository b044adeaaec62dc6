package registry

import (
	"errors"
	"net/http"

	"github.com/ibakshay/nest.land/core"
	"github.com/ibakshay/nest.land/pkg/apikey"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/content"
	"github.com/ibakshay/nest.land/pkg/publish"
)

// Distinguishable error keys per failure mode, so clients and reviewers can
// act on them without parsing messages.
var (
	errInvalidName     = core.NewHTTPError(http.StatusBadRequest, "invalid_name")
	errNameBlocked     = core.NewHTTPError(http.StatusBadRequest, "name_blocked")
	errInvalidVersion  = core.NewHTTPError(http.StatusBadRequest, "invalid_version")
	errTooManyPieces   = core.NewHTTPError(http.StatusBadRequest, "too_many_pieces")
	errVersionExists   = core.NewHTTPError(http.StatusConflict, "version_exists")
	errPackageExists   = core.NewHTTPError(http.StatusConflict, "package_exists")
	errSessionNotFound = core.NewHTTPError(http.StatusNotFound, "session_not_found")
	errPackageNotFound = core.NewHTTPError(http.StatusNotFound, "package_not_found")
	errVersionNotFound = core.NewHTTPError(http.StatusNotFound, "version_not_found")
	errFileNotFound    = core.NewHTTPError(http.StatusNotFound, "file_not_found")
	errFinalizeFailed  = core.NewHTTPError(http.StatusBadGateway, "finalize_failed")
)

// mapError translates domain sentinels into the HTTP error taxonomy.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil

	// Credential failures. A missing or malformed credential is the
	// caller's request being wrong; a well-formed key that resolves to
	// nobody is an authentication failure.
	case errors.Is(err, apikey.ErrMissingCredential),
		errors.Is(err, apikey.ErrMalformedCredential),
		errors.Is(err, publish.ErrMissingCredential):
		return core.ErrBadRequest
	// A mismatched credential on a piece call is an authentication failure
	// against that session, not an ownership problem.
	case errors.Is(err, apikey.ErrInvalidCredential),
		errors.Is(err, publish.ErrCredentialMismatch):
		return core.ErrUnauthorized

	case errors.Is(err, publish.ErrInvalidName):
		return errInvalidName
	case errors.Is(err, publish.ErrNameBlocked):
		return errNameBlocked
	case errors.Is(err, publish.ErrInvalidVersion):
		return errInvalidVersion
	case errors.Is(err, publish.ErrTooManyPieces):
		return errTooManyPieces

	// Forbidden is reserved for the ownership mismatch on update.
	case errors.Is(err, publish.ErrNotOwner):
		return core.ErrForbidden

	case errors.Is(err, publish.ErrVersionExists),
		errors.Is(err, catalog.ErrVersionExists):
		return errVersionExists
	case errors.Is(err, publish.ErrPackageExists):
		return errPackageExists

	case errors.Is(err, publish.ErrSessionNotFound):
		return errSessionNotFound
	case errors.Is(err, catalog.ErrPackageNotFound):
		return errPackageNotFound
	case errors.Is(err, content.ErrNotFound):
		return errFileNotFound

	// The session is consumed by then, so the failure is terminal for
	// this attempt and must not look like an input error.
	case errors.Is(err, publish.ErrFinalizeFailed):
		return errFinalizeFailed

	default:
		return err
	}
}
