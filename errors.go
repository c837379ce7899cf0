package novapay

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrWeakPassword is returned when a signup password is below the minimum length.
var ErrWeakPassword = goerrors.New("password must be at least 6 characters", goerrors.CategoryValidation).
	WithTextCode("WEAK_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateAccount is returned when a signup email already has an account.
var ErrDuplicateAccount = goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_ACCOUNT").
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned when a login email has no matching account.
var ErrAccountNotFound = goerrors.New("no account found for email", goerrors.CategoryNotFound).
	WithTextCode("ACCOUNT_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is returned when a login password digest does not match.
var ErrInvalidCredentials = goerrors.New("incorrect password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthRequired is returned when checkout is requested without an
// authenticated account.
var ErrAuthRequired = goerrors.New("account required before checkout", goerrors.CategoryAuth).
	WithTextCode("AUTH_REQUIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrPaymentNotConfigured is returned when no redirect target is configured.
var ErrPaymentNotConfigured = goerrors.New("payment link not configured", goerrors.CategoryOperation).
	WithTextCode("PAYMENT_NOT_CONFIGURED")

// ErrSubmissionInFlight is returned when a signup or login is submitted
// while a previous submission is still digesting.
var ErrSubmissionInFlight = goerrors.New("a submission is already in flight", goerrors.CategoryConflict).
	WithTextCode("SUBMISSION_IN_FLIGHT").
	WithCode(goerrors.CodeConflict)

// ErrMalformedRecord marks a persisted blob that failed typed
// deserialization. It never escapes the store boundary: both stores map it
// to "no data" and report it only through their loggers.
var ErrMalformedRecord = goerrors.New("persisted record is malformed", goerrors.CategoryValidation).
	WithTextCode("MALFORMED_RECORD")

// IsUserCorrectable reports whether the error is one a visitor can fix by
// changing what they typed or by signing up first.
func IsUserCorrectable(err error) bool {
	for _, target := range []error{
		ErrWeakPassword,
		ErrDuplicateAccount,
		ErrAccountNotFound,
		ErrInvalidCredentials,
		ErrAuthRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
