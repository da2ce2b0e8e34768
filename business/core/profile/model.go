package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Set of errors returned when opening a profile.
var (
	ErrDeleted  = errors.New("profile is deleted")
	ErrTooShort = errors.New("sealed profile is shorter than its nonce")
)

// Data is the plaintext record a user publishes.
type Data struct {
	Name      string   `json:"name"`
	Age       uint32   `json:"age"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
	Location  string   `json:"location"`
}

// Profile is the sealed form of a user's record. An empty Algorithm means
// the record was sealed with seal.Default.
type Profile struct {
	UserID    string         `json:"user_id"`
	Encrypted []byte         `json:"encrypted_data"`
	Algorithm seal.Algorithm `json:"algorithm,omitempty"`
	Deleted   bool           `json:"is_deleted"`
}

// Seal encodes the record and seals it under the key.
func Seal(alg seal.Algorithm, data Data, key seal.Key) ([]byte, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	return alg.Seal(key, plaintext)
}

// New constructs a profile sealed under the owner's key with the default
// algorithm.
func New(userID string, data Data, key seal.Key) (Profile, error) {
	return NewWithAlgorithm(seal.Default, userID, data, key)
}

// NewWithAlgorithm constructs a profile sealed under the owner's key with
// the specified algorithm.
func NewWithAlgorithm(alg seal.Algorithm, userID string, data Data, key seal.Key) (Profile, error) {
	sealed, err := Seal(alg, data, key)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		UserID:    userID,
		Encrypted: sealed,
		Algorithm: alg,
	}

	return p, nil
}

// Update replaces the sealed record and returns the new sealed bytes.
func (p *Profile) Update(data Data, key seal.Key) ([]byte, error) {
	if p.Deleted {
		return nil, ErrDeleted
	}

	sealed, err := Seal(p.Algorithm, data, key)
	if err != nil {
		return nil, err
	}

	p.Encrypted = sealed
	return append([]byte(nil), sealed...), nil
}

// Decrypt opens the record. A deleted profile never opens, whatever the key.
func (p Profile) Decrypt(key seal.Key) (Data, error) {
	if p.Deleted {
		return Data{}, ErrDeleted
	}

	if len(p.Encrypted) < seal.NonceSize {
		return Data{}, ErrTooShort
	}

	plaintext, err := p.Algorithm.Open(key, p.Encrypted)
	if err != nil {
		return Data{}, err
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return Data{}, fmt.Errorf("decoding profile: %w", err)
	}

	return data, nil
}

// Delete marks the profile deleted. There is no way back.
func (p *Profile) Delete() {
	p.Deleted = true
}
