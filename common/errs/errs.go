package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when an argument or configuration value is invalid.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a feature, network or provider is not supported.
	Unsupported = ErrorKind("Unsupported")

	// Unauthorized is returned when a request carries a missing or mismatched credential.
	Unauthorized = ErrorKind("Unauthorized")

	// Timeout is returned when an operation does not complete in time.
	Timeout = ErrorKind("Timeout")

	// Conflict is returned when an operation collides with one already in progress.
	Conflict = ErrorKind("Conflict")

	// Forbidden is returned when an operation is not allowed in the current configuration.
	Forbidden = ErrorKind("Forbidden")

	// TooManyRequests is returned when a caller exceeds a rate limit or cooldown.
	TooManyRequests = ErrorKind("Too Many Requests")

	// Unavailable is returned when a dependency or feature is disabled or unreachable.
	Unavailable = ErrorKind("Unavailable")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
