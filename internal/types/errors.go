package types

import "errors"

// Error taxonomy shared by every reader package. Callers wrap these with
// fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrMissingValue: a required field is absent or empty.
	ErrMissingValue = errors.New("missing value")
	// ErrInvalidValue: a field is present but fails to convert or validate.
	ErrInvalidValue = errors.New("invalid value")
	// ErrLayoutMismatch: a fixed account does not match the layout entry at its position.
	ErrLayoutMismatch = errors.New("layout mismatch")
	// ErrTooFewAccounts: the accounts ran out before the layout was fully walked.
	ErrTooFewAccounts = errors.New("too few accounts")
	// ErrUnexpectedBatch: a satellite batch belongs to another document.
	ErrUnexpectedBatch = errors.New("unexpected batch")
	// ErrBadArchive: the archive has an unknown or missing member, or is not a valid container.
	ErrBadArchive = errors.New("bad archive")
)
