package protect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"

	"filippo.io/age"
)

const ageIdentityFileName = "settings.agekey"

// AgeProtector seals to an x25519 identity that lives only on this machine.
type AgeProtector struct {
	identity *age.X25519Identity
}

// NewAgeProtector loads the identity at path, generating and storing a new
// one (mode 0600) if the file does not exist yet.
func NewAgeProtector(path string, log logger.Logger) (*AgeProtector, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Generating age identity at %s", path)
		return generateAgeIdentity(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read age identity: %w", err)
	}

	if info, statErr := os.Stat(path); statErr == nil && info.Mode().Perm()&0o077 != 0 {
		log.WarnfAlways("age identity %s is accessible by other users (mode %o)", path, info.Mode().Perm())
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid age identity at %s: %v", kerrors.ErrProtection, path, err)
	}
	return &AgeProtector{identity: identity}, nil
}

func generateAgeIdentity(path string) (*AgeProtector, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("%w: generating age identity: %v", kerrors.ErrProtection, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create identity directory: %w", err)
	}
	// O_EXCL so a concurrent first run never clobbers an identity in use.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create age identity file: %w", err)
	}
	if _, err := file.WriteString(identity.String() + "\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write age identity: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close age identity file: %w", err)
	}

	return &AgeProtector{identity: identity}, nil
}

// Recipient returns the public half of the identity in age1... form.
func (p *AgeProtector) Recipient() string {
	return p.identity.Recipient().String()
}

func (p *AgeProtector) Seal(plaintext []byte) ([]byte, error) {
	var sealed bytes.Buffer
	writer, err := age.Encrypt(&sealed, p.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("%w: creating age encryptor: %v", kerrors.ErrProtection, err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("%w: writing plaintext to age encryptor: %v", kerrors.ErrProtection, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalizing age encryption: %v", kerrors.ErrProtection, err)
	}
	return sealed.Bytes(), nil
}

func (p *AgeProtector) Unseal(sealed []byte) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(sealed), p.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypting: %v", kerrors.ErrProtection, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading decrypted plaintext: %v", kerrors.ErrProtection, err)
	}
	return plaintext, nil
}
