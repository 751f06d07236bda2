package domain

import "errors"

var (
	// ErrMissingField indicates a required notification field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrConfiguration indicates the gateway secret or merchant id is not set.
	ErrConfiguration = errors.New("payment gateway not configured")

	// ErrInvalidSignature indicates the supplied validation hash does not match.
	ErrInvalidSignature = errors.New("invalid validation hash")

	// ErrInvalidIdentifier indicates a malformed composite basket identifier.
	ErrInvalidIdentifier = errors.New("invalid basket identifier")

	// ErrRecordNotFound indicates no record matches the record key anywhere.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStoreUnavailable indicates a transient failure of the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrQueueFull indicates the write-behind queue cannot accept more work.
	ErrQueueFull = errors.New("write queue full")

	// ErrQueueNotRunning indicates no worker is consuming the write-behind queue.
	ErrQueueNotRunning = errors.New("write queue not running")
)

// SignatureMismatchError carries both digests so the caller can report them.
type SignatureMismatchError struct {
	Computed string
	Supplied string
}

func (e *SignatureMismatchError) Error() string {
	return ErrInvalidSignature.Error()
}

func (e *SignatureMismatchError) Unwrap() error {
	return ErrInvalidSignature
}

// IsClientError reports whether err was caused by the notification itself
// rather than by configuration or infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrInvalidIdentifier)
}
