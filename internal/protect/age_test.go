package protect

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
)

func TestAgeProtectorCreatesIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ageIdentityFileName)

	p, err := NewAgeProtector(path, logger.Logger{})
	if err != nil {
		t.Fatalf("NewAgeProtector failed: %v", err)
	}
	if !strings.HasPrefix(p.Recipient(), "age1") {
		t.Errorf("Recipient = %q, want prefix age1", p.Recipient())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected identity file at %s: %v", path, err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected identity mode 0600, got %o", info.Mode().Perm())
	}

	reloaded, err := NewAgeProtector(path, logger.Logger{})
	if err != nil {
		t.Fatalf("Reloading identity failed: %v", err)
	}
	if reloaded.Recipient() != p.Recipient() {
		t.Error("Reloaded identity does not match the generated one")
	}
}

func TestAgeProtectorRoundTrip(t *testing.T) {
	p, err := NewAgeProtector(filepath.Join(t.TempDir(), ageIdentityFileName), logger.Logger{})
	if err != nil {
		t.Fatalf("NewAgeProtector failed: %v", err)
	}

	for _, size := range []int{0, 1, 32, 4096} {
		plaintext := randomBytes(t, size)
		sealed, err := p.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal(%d bytes) failed: %v", size, err)
		}
		unsealed, err := p.Unseal(sealed)
		if err != nil {
			t.Fatalf("Unseal(%d bytes) failed: %v", size, err)
		}
		if !bytes.Equal(unsealed, plaintext) {
			t.Errorf("Unseal(Seal(b)) != b for %d bytes", size)
		}
	}
}

func TestAgeProtectorRejectsOtherIdentity(t *testing.T) {
	owner, err := NewAgeProtector(filepath.Join(t.TempDir(), ageIdentityFileName), logger.Logger{})
	if err != nil {
		t.Fatalf("NewAgeProtector failed: %v", err)
	}
	other, err := NewAgeProtector(filepath.Join(t.TempDir(), ageIdentityFileName), logger.Logger{})
	if err != nil {
		t.Fatalf("NewAgeProtector failed: %v", err)
	}

	sealed, err := owner.Seal([]byte("relay key"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := other.Unseal(sealed); !errors.Is(err, kerrors.ErrProtection) {
		t.Errorf("Expected ErrProtection for foreign identity, got %v", err)
	}
	if _, err := owner.Unseal([]byte("not an age file")); !errors.Is(err, kerrors.ErrProtection) {
		t.Errorf("Expected ErrProtection for garbage, got %v", err)
	}
}

func TestAgeProtectorRejectsInvalidIdentityFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ageIdentityFileName)
	if err := os.WriteFile(path, []byte("AGE-SECRET-KEY-garbage\n"), 0600); err != nil {
		t.Fatalf("Failed to write identity: %v", err)
	}

	if _, err := NewAgeProtector(path, logger.Logger{}); !errors.Is(err, kerrors.ErrProtection) {
		t.Fatalf("Expected ErrProtection for invalid identity, got %v", err)
	}
}

func TestNewSelectsProtector(t *testing.T) {
	p, err := New(Options{Kind: KindAge, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New(age) failed: %v", err)
	}
	if _, ok := p.(*AgeProtector); !ok {
		t.Errorf("Expected *AgeProtector, got %T", p)
	}

	p, err = New(Options{Kind: KindMachine, Scope: ScopeMachine, InstallationID: "install-1"})
	if err != nil {
		t.Fatalf("New(machine) failed: %v", err)
	}
	if _, ok := p.(*MachineProtector); !ok {
		t.Errorf("Expected *MachineProtector, got %T", p)
	}

	if _, err := New(Options{Kind: "dpapi"}); !errors.Is(err, kerrors.ErrUnknownProtector) {
		t.Errorf("Expected ErrUnknownProtector, got %v", err)
	}
	if _, err := New(Options{Kind: KindAge}); err == nil {
		t.Error("Expected error for age protector without a data directory")
	}
}

func TestNewAgeLogsRecipient(t *testing.T) {
	var out bytes.Buffer
	p, err := New(Options{Kind: KindAge, DataDir: t.TempDir(), Logger: logger.Logger{Debug: true, Out: &out, Err: &out}})
	if err != nil {
		t.Fatalf("New(age) failed: %v", err)
	}

	recipient := p.(*AgeProtector).Recipient()
	if !strings.Contains(out.String(), recipient) {
		t.Errorf("Expected recipient %s in debug output, got:\n%s", recipient, out.String())
	}
}
