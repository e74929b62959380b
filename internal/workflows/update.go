package workflows

import (
	"context"
)

// UpdateOptions lists the fields to change. Nil fields are left alone; a
// pointer to an empty string clears the field.
type UpdateOptions struct {
	RelayURL       *string
	ConnectionName *string
	KeyName        *string
	RedirectionURL *string
}

// IsEmpty reports whether no field would change.
func (o UpdateOptions) IsEmpty() bool {
	return o.RelayURL == nil && o.ConnectionName == nil && o.KeyName == nil && o.RedirectionURL == nil
}

// Update applies opts and saves the settings. Nothing is saved if any
// value is rejected.
//
// Returns ErrInvalidRedirectionURL if RedirectionURL is not an absolute http(s) URL.
func Update(ctx context.Context, env *Environment, opts UpdateOptions) error {
	if opts.RedirectionURL != nil {
		if err := env.Store.SetRedirectionURL(*opts.RedirectionURL); err != nil {
			return err
		}
	}

	if opts.RelayURL != nil || opts.ConnectionName != nil || opts.KeyName != nil {
		current := env.Store.Snapshot()
		relayURL := pick(opts.RelayURL, current.HybridConnectionURL)
		connectionName := pick(opts.ConnectionName, current.HybridConnectionName)
		keyName := pick(opts.KeyName, current.HybridConnectionKeyName)

		env.Store.SetRelay(relayURL, connectionName, keyName)
		env.log.Debugf("Relay set to %s/%s with key name %s", relayURL, connectionName, keyName)
	}

	return env.Store.Save()
}

func pick(value *string, current string) string {
	if value == nil {
		return current
	}
	return *value
}
