// Package protect seals the relay shared key so it never rests on disk in
// plaintext.
//
// A [Protector] turns plaintext into an opaque blob that only the same machine
// (and, for user scope, the same user) can turn back. Two implementations exist:
//
//   - [MachineProtector] derives a secretbox key with HKDF-SHA256 from the host
//     machine id and a scope string. Nothing is written to disk. Sealed blobs
//     carry a 3-byte header and a random 24-byte nonce, so sealing the same
//     plaintext twice gives different output.
//   - [AgeProtector] encrypts to an age x25519 identity stored at mode 0600 in
//     the user data directory, created on first use.
//
// Every failure to unseal (foreign machine, other scope, corruption,
// truncation) wraps errors.ErrProtection. Callers never retry it.
//
// [Secret] carries unsealed material through the rest of the program with
// redacted formatting.
package protect
