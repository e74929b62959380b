package protect

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealMagic    = "TR"
	sealVersion  = 1
	headerSize   = len(sealMagic) + 1
	nonceSize    = 24
	keySize      = 32
	minSealedLen = headerSize + nonceSize + secretbox.Overhead
)

var keyDerivationSalt = []byte("tunnelrelay/settings-protection/v1")

// MachineProtector seals with NaCl secretbox under a key derived from the
// machine identity and scope. The key never leaves memory.
type MachineProtector struct {
	key [keySize]byte
}

// NewMachineProtector derives the sealing key for identity.
func NewMachineProtector(identity Identity) (*MachineProtector, error) {
	if identity.MachineID == "" {
		return nil, fmt.Errorf("%w: empty machine identity", kerrors.ErrProtection)
	}

	p := &MachineProtector{}
	reader := hkdf.New(sha256.New, []byte(identity.MachineID), keyDerivationSalt, []byte(identity.Scope))
	if _, err := io.ReadFull(reader, p.key[:]); err != nil {
		return nil, fmt.Errorf("%w: deriving key: %v", kerrors.ErrProtection, err)
	}
	return p, nil
}

// Seal returns magic | version | nonce | secretbox(plaintext).
func (p *MachineProtector) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: generating nonce: %v", kerrors.ErrProtection, err)
	}

	out := make([]byte, 0, minSealedLen+len(plaintext))
	out = append(out, sealMagic...)
	out = append(out, sealVersion)
	out = append(out, nonce[:]...)

	return secretbox.Seal(out, plaintext, &nonce, &p.key), nil
}

// Unseal reverses Seal. Blobs sealed under another identity or scope, and
// corrupted or truncated blobs, fail with ErrProtection.
func (p *MachineProtector) Unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < minSealedLen {
		return nil, fmt.Errorf("%w: sealed blob too short (%d bytes)", kerrors.ErrProtection, len(sealed))
	}
	if string(sealed[:len(sealMagic)]) != sealMagic || sealed[len(sealMagic)] != sealVersion {
		return nil, fmt.Errorf("%w: unrecognized sealed blob header", kerrors.ErrProtection)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[headerSize:headerSize+nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[headerSize+nonceSize:], &nonce, &p.key)
	if !ok {
		return nil, fmt.Errorf("%w: sealed blob was not produced on this machine or is corrupted", kerrors.ErrProtection)
	}
	return plaintext, nil
}
