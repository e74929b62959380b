package protect

import (
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret holds unsealed key material. Formatting and JSON encoding redact it,
// so it is safe to pass through loggers. Use Reveal at the point of use.
type Secret string

func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so %v, %s, %q and %#v are all redacted.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Reveal returns the underlying value.
func (s Secret) Reveal() string { return string(s) }

// IsZero reports whether no secret is held.
func (s Secret) IsZero() bool { return s == "" }
