// Package keys provides the secp256k1 key material used by ledger participants.
// Every party (requester, oracle, notary) signs transaction identifiers with a keypair
// from this package; public keys double as the required-signer identities on commands.
package keys

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

const (
	// PrivateKeySize is the size of a secp256k1 private key
	PrivateKeySize = 32
	// PublicKeySize is the size of a compressed secp256k1 public key
	PublicKeySize = 33
	// SignatureSize is the size of an [R || S] signature without recovery id
	SignatureSize = 64
)

// PublicKey is a 33-byte compressed secp256k1 public key.
// It is encoded as 0x-prefixed hex in JSON and YAML.
type PublicKey []byte

// ParsePublicKey decodes a hex encoded compressed public key.
func ParsePublicKey(s string) (PublicKey, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if _, err := crypto.DecompressPubkey(b); err != nil {
		return nil, fmt.Errorf("invalid secp256k1 public key: %w", err)
	}
	return PublicKey(b), nil
}

// Equal reports whether both keys hold the same bytes
func (k PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(k, other)
}

// Hex returns the 0x-prefixed hex form of the key
func (k PublicKey) Hex() string {
	return hexutil.Encode(k)
}

// String implements fmt.Stringer
func (k PublicKey) String() string {
	return k.Hex()
}

// MarshalText implements encoding.TextMarshaler
func (k PublicKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(k).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *PublicKey) UnmarshalText(input []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(input); err != nil {
		return err
	}
	*k = PublicKey(b)
	return nil
}

// Contains reports whether key is one of the given keys
func Contains(set []PublicKey, key PublicKey) bool {
	for _, k := range set {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

// KeyPair is a secp256k1 signing keypair
type KeyPair struct {
	PublicKey  PublicKey // 33-byte compressed secp256k1 public key
	PrivateKey []byte    // 32-byte secp256k1 private key
}

// GenerateKeyPair generates a new random secp256k1 keypair
func GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secp256k1 keypair: %w", err)
	}

	return &KeyPair{
		PublicKey:  crypto.CompressPubkey(&privateKey.PublicKey),
		PrivateKey: crypto.FromECDSA(privateKey),
	}, nil
}

// FromPrivateKey rebuilds a keypair from a raw 32-byte private key
func FromPrivateKey(privateKeyBytes []byte) (*KeyPair, error) {
	if len(privateKeyBytes) != PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(privateKeyBytes))
	}
	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create private key: %w", err)
	}
	return &KeyPair{
		PublicKey:  crypto.CompressPubkey(&privateKey.PublicKey),
		PrivateKey: crypto.FromECDSA(privateKey),
	}, nil
}

// DeriveKeyPair deterministically derives a keypair for a named party from a node seed.
// Uses HKDF with SHA-256 for key derivation.
func DeriveKeyPair(partyName string, seed []byte) (*KeyPair, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes")
	}

	info := []byte("identity-oracle-key-" + partyName)
	hkdfReader := hkdf.New(sha256.New, seed, nil, info)

	privateKeyBytes := make([]byte, PrivateKeySize)
	if _, err := io.ReadFull(hkdfReader, privateKeyBytes); err != nil {
		return nil, fmt.Errorf("failed to derive key seed: %w", err)
	}

	return FromPrivateKey(privateKeyBytes)
}

// SignHash signs a 32-byte digest and returns the 64-byte [R || S] signature.
// Signing is deterministic (RFC 6979): the same key and digest always yield the same bytes.
func (kp *KeyPair) SignHash(hash common.Hash) ([]byte, error) {
	privateKey, err := crypto.ToECDSA(kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}

	signature, err := crypto.Sign(hash.Bytes(), privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	// drop the recovery id
	return signature[:SignatureSize], nil
}

// Verify checks a 64-byte [R || S] signature over hash against a compressed public key
func Verify(publicKey PublicKey, hash common.Hash, signature []byte) bool {
	if len(signature) != SignatureSize || len(publicKey) != PublicKeySize {
		return false
	}
	return crypto.VerifySignature(publicKey, hash.Bytes(), signature)
}

// GenerateMasterKey generates a new random 32-byte master key for encrypting private keys at rest.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}

// MasterKeyFromBase64 decodes a base64-encoded master key
func MasterKeyFromBase64(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// MasterKeyToBase64 encodes a master key as base64 for storage
func MasterKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
