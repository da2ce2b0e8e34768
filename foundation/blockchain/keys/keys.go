// Package keys manages the per user key material: a key exchange pair used
// to derive pairwise shared secrets and the symmetric profile key that
// protects everything the user publishes.
package keys

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
	"golang.org/x/crypto/curve25519"
)

// ErrInvalidPublicKey is returned when a peer public key can't be used.
var ErrInvalidPublicKey = errors.New("invalid peer public key")

// Exchange represents the behavior of a key exchange primitive. Any
// primitive that can turn a secret and a peer public key into a 32 byte
// shared secret will do.
type Exchange interface {
	Name() string
	GenerateKey() (secret []byte, public []byte, err error)
	SharedSecret(secret []byte, peerPublic []byte) (seal.Key, error)
}

// Set of supported exchange primitives.
var (
	X25519    Exchange = x25519Exchange{}
	Secp256k1 Exchange = secp256k1Exchange{}
)

// ParseExchange converts a configuration string into an Exchange.
func ParseExchange(name string) (Exchange, error) {
	switch strings.ToLower(name) {
	case X25519.Name():
		return X25519, nil
	case Secp256k1.Name():
		return Secp256k1, nil
	}

	return nil, fmt.Errorf("unknown key exchange %q", name)
}

// =============================================================================

// KeyPair holds a user's exchange key pair and profile key.
type KeyPair struct {
	Exchange   Exchange
	Public     []byte
	ProfileKey seal.Key

	secret []byte
}

// Generate constructs a new key pair using the specified exchange and an
// independent random profile key.
func Generate(ex Exchange) (KeyPair, error) {
	secret, public, err := ex.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generating %s key: %w", ex.Name(), err)
	}

	profileKey, err := seal.NewKey()
	if err != nil {
		return KeyPair{}, err
	}

	kp := KeyPair{
		Exchange:   ex,
		Public:     public,
		ProfileKey: profileKey,
		secret:     secret,
	}

	return kp, nil
}

// SharedSecret derives the secret shared with the owner of the peer
// public key. Both sides derive the same value.
func (kp KeyPair) SharedSecret(peerPublic []byte) (seal.Key, error) {
	return kp.Exchange.SharedSecret(kp.secret, peerPublic)
}

// WrapProfileKey seals the profile key under the secret shared with the
// peer. The result is the payload of a KeyShare transaction.
func (kp KeyPair) WrapProfileKey(peerPublic []byte) ([]byte, error) {
	shared, err := kp.SharedSecret(peerPublic)
	if err != nil {
		return nil, err
	}

	return seal.Seal(shared, kp.ProfileKey[:])
}

// UnwrapProfileKey recovers a profile key wrapped by the owner of the
// sender public key.
func (kp KeyPair) UnwrapProfileKey(senderPublic []byte, wrapped []byte) (seal.Key, error) {
	shared, err := kp.SharedSecret(senderPublic)
	if err != nil {
		return seal.Key{}, err
	}

	raw, err := seal.Open(shared, wrapped)
	if err != nil {
		return seal.Key{}, err
	}

	if len(raw) != seal.KeySize {
		return seal.Key{}, fmt.Errorf("unwrapped key has %d bytes", len(raw))
	}

	var key seal.Key
	copy(key[:], raw)

	return key, nil
}

// =============================================================================

type x25519Exchange struct{}

func (x25519Exchange) Name() string {
	return "x25519"
}

func (x25519Exchange) GenerateKey() ([]byte, []byte, error) {
	secret := make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, nil, err
	}

	public, err := curve25519.X25519(secret, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}

	return secret, public, nil
}

func (x25519Exchange) SharedSecret(secret []byte, peerPublic []byte) (seal.Key, error) {
	if len(peerPublic) != curve25519.PointSize {
		return seal.Key{}, ErrInvalidPublicKey
	}

	out, err := curve25519.X25519(secret, peerPublic)
	if err != nil {
		return seal.Key{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	var key seal.Key
	copy(key[:], out)

	return key, nil
}

// =============================================================================

type secp256k1Exchange struct{}

func (secp256k1Exchange) Name() string {
	return "secp256k1"
}

func (secp256k1Exchange) GenerateKey() ([]byte, []byte, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}

	return crypto.FromECDSA(privateKey), crypto.FromECDSAPub(&privateKey.PublicKey), nil
}

// SharedSecret runs ECDH on secp256k1 and hashes the x coordinate with
// Keccak256 so the result is uniformly distributed.
func (secp256k1Exchange) SharedSecret(secret []byte, peerPublic []byte) (seal.Key, error) {
	privateKey, err := crypto.ToECDSA(secret)
	if err != nil {
		return seal.Key{}, fmt.Errorf("loading secret: %w", err)
	}

	publicKey, err := crypto.UnmarshalPubkey(peerPublic)
	if err != nil {
		return seal.Key{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	const skLen, macLen = 16, 16
	x, err := ecies.ImportECDSA(privateKey).GenerateShared(ecies.ImportECDSAPublic(publicKey), skLen, macLen)
	if err != nil {
		return seal.Key{}, fmt.Errorf("deriving shared secret: %w", err)
	}

	var key seal.Key
	copy(key[:], crypto.Keccak256(x))

	return key, nil
}
