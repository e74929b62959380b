package protect

import (
	"fmt"
	"path/filepath"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
)

// Protector seals and unseals opaque blobs so that sealed output can only be
// recovered on the machine (and scope) that produced it.
type Protector interface {
	Seal(plaintext []byte) ([]byte, error)
	Unseal(sealed []byte) ([]byte, error)
}

const (
	KindMachine = "machine"
	KindAge     = "age"

	ScopeMachine = "machine"
	ScopeUser    = "user"
)

// Options selects and configures a Protector.
type Options struct {
	// Kind is KindMachine (default) or KindAge.
	Kind string

	// Scope is ScopeUser (default) or ScopeMachine. Only used by KindMachine.
	Scope string

	// InstallationID is used as the machine identity when the host has no
	// machine-id file.
	InstallationID string

	// DataDir holds the age identity file for KindAge.
	DataDir string

	Logger logger.Logger
}

// New returns the Protector described by opts.
func New(opts Options) (Protector, error) {
	switch opts.Kind {
	case "", KindMachine:
		identity, err := DiscoverIdentity(opts.Scope, opts.InstallationID)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debugf("Using machine protector with scope %q", identity.Scope)
		return NewMachineProtector(identity)
	case KindAge:
		if opts.DataDir == "" {
			return nil, fmt.Errorf("age protector requires a data directory")
		}
		path := filepath.Join(opts.DataDir, ageIdentityFileName)
		protector, err := NewAgeProtector(path, opts.Logger)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debugf("Using age protector with identity %s (recipient %s)", path, protector.Recipient())
		return protector, nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownProtector, opts.Kind)
	}
}
