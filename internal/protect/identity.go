package protect

import (
	"fmt"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/utils"
)

// machineIDPaths are checked in order for a stable per-host identifier.
var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// Identity is the input to key derivation for MachineProtector.
type Identity struct {
	MachineID string
	Scope     string
}

// DiscoverIdentity reads the host machine id, falling back to the
// installation id when the host has none. scope is ScopeUser or ScopeMachine.
func DiscoverIdentity(scope, installationID string) (Identity, error) {
	machineID := readMachineID()
	if machineID == "" {
		machineID = strings.TrimSpace(installationID)
	}
	if machineID == "" {
		return Identity{}, fmt.Errorf("%w: no machine identity available", kerrors.ErrProtection)
	}

	switch scope {
	case "", ScopeUser:
		username, err := utils.GetUsername()
		if err != nil {
			return Identity{}, fmt.Errorf("failed to resolve user scope: %w", err)
		}
		return Identity{MachineID: machineID, Scope: ScopeUser + ":" + username}, nil
	case ScopeMachine:
		return Identity{MachineID: machineID, Scope: ScopeMachine}, nil
	default:
		return Identity{}, fmt.Errorf("unknown protection scope %q", scope)
	}
}

func readMachineID() string {
	for _, path := range machineIDPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}
