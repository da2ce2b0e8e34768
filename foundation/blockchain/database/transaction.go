package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// SystemID is the receiver recorded on profile maintenance transactions and
// the sender of the genesis transaction.
const SystemID = "system"

// ErrNoContent is returned when content is requested from a transaction
// kind that doesn't carry encrypted content.
var ErrNoContent = errors.New("transaction carries no encrypted content")

// Kind identifies which of the transaction variants a Tx holds.
type Kind string

// Set of transaction kinds recorded on the ledger.
const (
	KindPeaceTransfer   Kind = "PeaceTransfer"
	KindProfileDeletion Kind = "ProfileDeletion"
	KindProfileUpdate   Kind = "ProfileUpdate"
	KindMatch           Kind = "Match"
	KindKeyRevocation   Kind = "KeyRevocation"
	KindMessage         Kind = "Message"
	KindLike            Kind = "Like"
	KindPhotoShare      Kind = "PhotoShare"
	KindBlockUser       Kind = "BlockUser"
	KindVideoCall       Kind = "VideoCall"
	KindReportUser      Kind = "ReportUser"
	KindKeyShare        Kind = "KeyShare"
)

// Pair is an ordered pair of user identities.
type Pair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// Reverse returns the pair with the identities swapped.
func (p Pair) Reverse() Pair {
	return Pair{First: p.Second, Second: p.First}
}

// Involves reports whether both identities make up the pair in either order.
func (p Pair) Involves(a, b string) bool {
	return (p.First == a && p.Second == b) || (p.First == b && p.Second == a)
}

// =============================================================================

// Payload is the kind specific data of a transaction. Only the types in
// this package implement it.
type Payload interface {
	kind() Kind
}

// PeaceTransfer moves Peace between two users.
type PeaceTransfer struct {
	Amount float64 `json:"amount"`
}

// ProfileDeletion records that a user removed their profile.
type ProfileDeletion struct {
	UserID string `json:"user_id"`
}

// ProfileUpdate carries the newly sealed profile of a user.
type ProfileUpdate struct {
	UserID  string `json:"user_id"`
	Profile []byte `json:"updated_profile"`
}

// Match records a mutual match.
type Match struct {
	Pair Pair `json:"match_pair"`
}

// KeyRevocation records that the first identity revoked the second
// identity's access to its content.
type KeyRevocation struct {
	Pair Pair `json:"revoked_key_pair"`
}

// Message carries sealed chat content.
type Message struct {
	Content []byte `json:"encrypted_content"`
}

// Like records that the sender liked the receiver.
type Like struct{}

// PhotoShare carries a sealed photo reference.
type PhotoShare struct {
	Content []byte `json:"encrypted_content"`
}

// BlockUser records that the sender blocked the receiver.
type BlockUser struct{}

// VideoCall records a call and its duration in seconds.
type VideoCall struct {
	Duration uint32 `json:"duration"`
}

// ReportUser records a report against the receiver.
type ReportUser struct {
	Reason string `json:"reason"`
}

// KeyShare carries a profile key sealed under a pairwise shared secret.
type KeyShare struct {
	EncryptedKey []byte `json:"encrypted_key"`
}

func (PeaceTransfer) kind() Kind   { return KindPeaceTransfer }
func (ProfileDeletion) kind() Kind { return KindProfileDeletion }
func (ProfileUpdate) kind() Kind   { return KindProfileUpdate }
func (Match) kind() Kind           { return KindMatch }
func (KeyRevocation) kind() Kind   { return KindKeyRevocation }
func (Message) kind() Kind         { return KindMessage }
func (Like) kind() Kind            { return KindLike }
func (PhotoShare) kind() Kind      { return KindPhotoShare }
func (BlockUser) kind() Kind       { return KindBlockUser }
func (VideoCall) kind() Kind       { return KindVideoCall }
func (ReportUser) kind() Kind      { return KindReportUser }
func (KeyShare) kind() Kind        { return KindKeyShare }

// =============================================================================

// Tx is a single immutable event recorded on the ledger. The constructors
// below are the only way to produce one, so the payload always agrees with
// the kind.
type Tx struct {
	senderID   string
	receiverID string
	timestamp  string
	id         string
	payload    Payload
}

func newTx(senderID, receiverID, timestamp, id string, payload Payload) Tx {
	return Tx{
		senderID:   senderID,
		receiverID: receiverID,
		timestamp:  timestamp,
		id:         id,
		payload:    payload,
	}
}

// NewPeaceTransfer constructs a transfer of Peace between two users. The
// amount must be a finite number.
func NewPeaceTransfer(senderID, receiverID string, amount float64, timestamp, id string) (Tx, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Tx{}, fmt.Errorf("amount %v is not a finite number", amount)
	}

	return newTx(senderID, receiverID, timestamp, id, PeaceTransfer{Amount: amount}), nil
}

// NewProfileDeletion constructs the record of a user deleting their profile.
func NewProfileDeletion(userID, timestamp, id string) Tx {
	return newTx(userID, SystemID, timestamp, id, ProfileDeletion{UserID: userID})
}

// NewProfileUpdate constructs the record of a user publishing a new sealed
// profile.
func NewProfileUpdate(userID string, profile []byte, timestamp, id string) Tx {
	return newTx(userID, SystemID, timestamp, id, ProfileUpdate{UserID: userID, Profile: clone(profile)})
}

// NewMatch constructs a match between two users.
func NewMatch(userID1, userID2, timestamp, id string) Tx {
	return newTx(userID1, userID2, timestamp, id, Match{Pair: Pair{First: userID1, Second: userID2}})
}

// NewKeyRevocation constructs the revocation of the target's access to the
// revoker's content.
func NewKeyRevocation(revokerID, targetID, timestamp, id string) Tx {
	return newTx(revokerID, targetID, timestamp, id, KeyRevocation{Pair: Pair{First: revokerID, Second: targetID}})
}

// NewMessage seals the content under the key and constructs a chat message.
func NewMessage(senderID, receiverID, content string, key seal.Key, timestamp, id string) (Tx, error) {
	sealed, err := seal.Seal(key, []byte(content))
	if err != nil {
		return Tx{}, fmt.Errorf("sealing message: %w", err)
	}

	return newTx(senderID, receiverID, timestamp, id, Message{Content: sealed}), nil
}

// NewLike constructs a like from the sender to the receiver.
func NewLike(senderID, receiverID, timestamp, id string) Tx {
	return newTx(senderID, receiverID, timestamp, id, Like{})
}

// NewPhotoShare seals the photo reference under the key and constructs a
// photo share.
func NewPhotoShare(senderID, receiverID, content string, key seal.Key, timestamp, id string) (Tx, error) {
	sealed, err := seal.Seal(key, []byte(content))
	if err != nil {
		return Tx{}, fmt.Errorf("sealing photo: %w", err)
	}

	return newTx(senderID, receiverID, timestamp, id, PhotoShare{Content: sealed}), nil
}

// NewBlockUser constructs the sender blocking the receiver.
func NewBlockUser(senderID, receiverID, timestamp, id string) Tx {
	return newTx(senderID, receiverID, timestamp, id, BlockUser{})
}

// NewVideoCall constructs a video call record.
func NewVideoCall(senderID, receiverID string, duration uint32, timestamp, id string) Tx {
	return newTx(senderID, receiverID, timestamp, id, VideoCall{Duration: duration})
}

// NewReportUser constructs a report against the receiver.
func NewReportUser(senderID, receiverID, reason, timestamp, id string) Tx {
	return newTx(senderID, receiverID, timestamp, id, ReportUser{Reason: reason})
}

// NewKeyShare constructs the transfer of a wrapped profile key.
func NewKeyShare(senderID, receiverID string, encryptedKey []byte, timestamp, id string) Tx {
	return newTx(senderID, receiverID, timestamp, id, KeyShare{EncryptedKey: clone(encryptedKey)})
}

// =============================================================================

// Kind returns the variant of the transaction.
func (tx Tx) Kind() Kind {
	if tx.payload == nil {
		return ""
	}
	return tx.payload.kind()
}

// SenderID returns the identity that sent the transaction.
func (tx Tx) SenderID() string {
	return tx.senderID
}

// ReceiverID returns the identity the transaction is addressed to.
func (tx Tx) ReceiverID() string {
	return tx.receiverID
}

// Timestamp returns the caller supplied timestamp.
func (tx Tx) Timestamp() string {
	return tx.timestamp
}

// ID returns the globally unique transaction id.
func (tx Tx) ID() string {
	return tx.id
}

// Payload returns a copy of the kind specific data.
func (tx Tx) Payload() Payload {
	switch p := tx.payload.(type) {
	case ProfileUpdate:
		p.Profile = clone(p.Profile)
		return p
	case Message:
		p.Content = clone(p.Content)
		return p
	case PhotoShare:
		p.Content = clone(p.Content)
		return p
	case KeyShare:
		p.EncryptedKey = clone(p.EncryptedKey)
		return p
	}

	return tx.payload
}

// MatchPair returns the pair of a Match transaction.
func (tx Tx) MatchPair() (Pair, bool) {
	m, ok := tx.payload.(Match)
	return m.Pair, ok
}

// RevokedPair returns the (revoker, target) pair of a KeyRevocation.
func (tx Tx) RevokedPair() (Pair, bool) {
	r, ok := tx.payload.(KeyRevocation)
	return r.Pair, ok
}

// Amount returns the amount of a PeaceTransfer.
func (tx Tx) Amount() (float64, bool) {
	p, ok := tx.payload.(PeaceTransfer)
	return p.Amount, ok
}

// Content opens the sealed content of a Message or PhotoShare.
func (tx Tx) Content(key seal.Key) (string, error) {
	var sealed []byte

	switch p := tx.payload.(type) {
	case Message:
		sealed = p.Content
	case PhotoShare:
		sealed = p.Content
	default:
		return "", ErrNoContent
	}

	plaintext, err := seal.Open(key, sealed)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s:%s->%s", tx.Kind(), tx.id, tx.senderID, tx.receiverID)
}

// =============================================================================

// txJSON is the canonical encoding of a transaction. The field order is
// part of the block hash and must never change.
type txJSON struct {
	Kind       Kind            `json:"kind"`
	SenderID   string          `json:"sender_id"`
	ReceiverID string          `json:"receiver_id"`
	Timestamp  string          `json:"timestamp"`
	ID         string          `json:"global_tx_id"`
	Payload    json.RawMessage `json:"payload"`
}

// MarshalJSON implements the json.Marshaler interface.
func (tx Tx) MarshalJSON() ([]byte, error) {
	if tx.payload == nil {
		return nil, errors.New("transaction was not constructed")
	}

	payload, err := json.Marshal(tx.payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(txJSON{
		Kind:       tx.Kind(),
		SenderID:   tx.senderID,
		ReceiverID: tx.receiverID,
		Timestamp:  tx.timestamp,
		ID:         tx.id,
		Payload:    payload,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var tj txJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}

	payload, err := decodePayload(tj.Kind, tj.Payload)
	if err != nil {
		return err
	}

	*tx = newTx(tj.SenderID, tj.ReceiverID, tj.Timestamp, tj.ID, payload)
	return nil
}

// =============================================================================

func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	switch kind {
	case KindPeaceTransfer:
		return decode[PeaceTransfer](raw)
	case KindProfileDeletion:
		return decode[ProfileDeletion](raw)
	case KindProfileUpdate:
		return decode[ProfileUpdate](raw)
	case KindMatch:
		return decode[Match](raw)
	case KindKeyRevocation:
		return decode[KeyRevocation](raw)
	case KindMessage:
		return decode[Message](raw)
	case KindLike:
		return decode[Like](raw)
	case KindPhotoShare:
		return decode[PhotoShare](raw)
	case KindBlockUser:
		return decode[BlockUser](raw)
	case KindVideoCall:
		return decode[VideoCall](raw)
	case KindReportUser:
		return decode[ReportUser](raw)
	case KindKeyShare:
		return decode[KeyShare](raw)
	}

	return nil, fmt.Errorf("unknown transaction kind %q", kind)
}

func decode[T Payload](raw json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
