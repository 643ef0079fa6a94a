package userauth

import (
	"github.com/goliatone/go-errors"
)

// ErrNoEmptyString is returned when asked to hash an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the only comparison failure the hasher
// reports. Malformed stored hashes collapse into it so callers cannot
// distinguish a corrupt hash from a wrong password.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode("CREDENTIAL_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is the single login outcome for unknown email,
// wrong password, and deactivated accounts.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned when registering an email that already maps to
// a record, active or not.
var ErrEmailTaken = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN").
	WithCode(errors.CodeConflict)

// ErrUnauthenticated covers every protected-request rejection: missing or
// malformed header, bad token, expired token, unknown or inactive subject.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is reported when claims decode cleanly but are past
// their expiration.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is reported for any decode failure: bad signature,
// bad structure, or an unsupported signing algorithm.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrStoreUnavailable wraps user store failures that are not "not found".
// It must never be conflated with an authentication rejection.
var ErrStoreUnavailable = errors.New("user store unavailable", errors.CategoryInternal).
	WithTextCode("STORE_UNAVAILABLE").
	WithCode(errors.CodeInternal)

// WrapValidation converts ozzo field errors into the request-level
// validation outcome, keeping field detail in metadata.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CategoryValidation, "invalid request payload").
		WithTextCode("VALIDATION").
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			"fields": err.Error(),
		})
}

// IsAuthError reports whether err resolves to an authentication rejection.
func IsAuthError(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryAuth || rich.Category == errors.CategoryAuthz
}
