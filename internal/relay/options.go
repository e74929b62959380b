package relay

import (
	"errors"
	"net/url"

	"github.com/PolarWolf314/tunnelrelay/internal/configs"
	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/protect"
)

// Options identify one hybrid connection and the local service it fronts.
type Options struct {
	// ServiceBusURLHost is the relay namespace host, e.g. sbname.servicebus.windows.net.
	ServiceBusURLHost string
	// ConnectionPath is the hybrid connection name.
	ConnectionPath     string
	KeyName            string
	SharedKey          protect.Secret
	InternalServiceURL *url.URL
}

// missingOption reports one absent value. Its message is shown to the user
// as is.
type missingOption string

func (m missingOption) Error() string { return string(m) }

func (m missingOption) Unwrap() error { return kerrors.ErrMissingRelayOption }

// Validate returns one error per missing value, in a fixed order. Every
// returned error matches ErrMissingRelayOption.
func (o Options) Validate() []error {
	var problems []error
	if o.ServiceBusURLHost == "" {
		problems = append(problems, missingOption("Missing required Service Bus url"))
	}
	if o.KeyName == "" {
		problems = append(problems, missingOption("Missing required Service Bus shared key name"))
	}
	if o.SharedKey.IsZero() {
		problems = append(problems, missingOption("Missing required Service Bus shared key"))
	}
	if o.ConnectionPath == "" {
		problems = append(problems, missingOption("Missing required hybrid connection name"))
	}
	if o.InternalServiceURL == nil || o.InternalServiceURL.Host == "" {
		problems = append(problems, missingOption("Missing required service url"))
	}
	return problems
}

// Merge fills every empty field of o from fallback.
func (o Options) Merge(fallback Options) Options {
	if o.ServiceBusURLHost == "" {
		o.ServiceBusURLHost = fallback.ServiceBusURLHost
	}
	if o.ConnectionPath == "" {
		o.ConnectionPath = fallback.ConnectionPath
	}
	if o.KeyName == "" {
		o.KeyName = fallback.KeyName
	}
	if o.SharedKey.IsZero() {
		o.SharedKey = fallback.SharedKey
	}
	if o.InternalServiceURL == nil {
		o.InternalServiceURL = fallback.InternalServiceURL
	}
	return o
}

// OptionsFromStore reads relay options from the stored settings. A missing
// shared key leaves SharedKey empty. Any other failure to unseal it, and an
// invalid stored service url, are returned together with the options that
// could be read.
func OptionsFromStore(store *configs.Store) (Options, error) {
	settings := store.Snapshot()

	opts := Options{
		ServiceBusURLHost: settings.HybridConnectionURL,
		ConnectionPath:    settings.HybridConnectionName,
		KeyName:           settings.HybridConnectionKeyName,
	}

	var problems []error
	if settings.RedirectionURL != "" {
		parsed, err := configs.ParseRedirectionURL(settings.RedirectionURL)
		if err != nil {
			problems = append(problems, err)
		} else {
			opts.InternalServiceURL = parsed
		}
	}

	key, err := store.GetSharedKey()
	switch {
	case err == nil:
		opts.SharedKey = protect.Secret(key)
	case !errors.Is(err, kerrors.ErrMissingSecret):
		problems = append(problems, err)
	}

	return opts, errors.Join(problems...)
}
