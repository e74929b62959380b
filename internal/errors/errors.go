package errors

import "errors"

// Custody errors indicate failures sealing or reading the relay shared key.
var (
	// ErrProtection indicates a blob could not be sealed or unsealed on this machine.
	// Foreign-machine blobs, corruption and truncation all surface as this error.
	ErrProtection = errors.New("secret protection failed")

	// ErrMissingSecret indicates the relay shared key was read before one was set.
	ErrMissingSecret = errors.New("relay shared key has not been set")

	// ErrInvalidSharedKey indicates the provided shared key is not valid base64.
	ErrInvalidSharedKey = errors.New("relay shared key is not valid base64")

	// ErrUnknownProtector indicates the configured protector kind is not supported.
	ErrUnknownProtector = errors.New("unknown secret protector")
)

// Settings errors indicate issues with the persisted settings or transfer strings.
var (
	// ErrDeserialization indicates a settings file or transfer string is malformed.
	ErrDeserialization = errors.New("settings could not be deserialized")

	// ErrInvalidRedirectionURL indicates the redirection URL is not an absolute http(s) URL.
	ErrInvalidRedirectionURL = errors.New("invalid redirection url")

	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrPluginNotFound indicates the plugin has no settings or is not enabled.
	ErrPluginNotFound = errors.New("plugin not found")
)

// Relay errors indicate issues building or running the relay session.
var (
	// ErrMissingRelayOption indicates a required relay connection value is absent.
	ErrMissingRelayOption = errors.New("missing required relay option")

	// ErrSessionClosed indicates the relay session was used after Close.
	ErrSessionClosed = errors.New("relay session is closed")
)
