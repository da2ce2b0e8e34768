package shard

import (
	"context"

	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

// ChatLine is an opened chat message.
type ChatLine struct {
	Timestamp  string        `json:"timestamp"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Kind       database.Kind `json:"kind"`
	Content    string        `json:"content"`
}

// SendMessage seals the content under the user's own key and records the
// message.
func (s *Shard) SendMessage(ctx context.Context, w Writer, ks filter.KeyLookup, receiverID, content, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := ks.Get(s.userID, s.userID)
	if !exists {
		return "", ErrNoKey
	}

	tx, err := database.NewMessage(s.userID, receiverID, content, key, timestamp, txID)
	if err != nil {
		return "", err
	}

	miner, err := s.submit(ctx, w, tx)
	if err != nil {
		return "", err
	}

	s.messages = append(s.messages, tx)

	return miner, nil
}

// SharePhoto seals the photo reference under the user's own key and records
// the share.
func (s *Shard) SharePhoto(ctx context.Context, w Writer, ks filter.KeyLookup, receiverID, content, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := ks.Get(s.userID, s.userID)
	if !exists {
		return "", ErrNoKey
	}

	tx, err := database.NewPhotoShare(s.userID, receiverID, content, key, timestamp, txID)
	if err != nil {
		return "", err
	}

	miner, err := s.submit(ctx, w, tx)
	if err != nil {
		return "", err
	}

	s.messages = append(s.messages, tx)

	return miner, nil
}

// SyncMessages replaces the held messages with every message and photo on
// the ledger the user sent or received.
func (s *Shard) SyncMessages(r Reader) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = s.messages[:0]
	for _, tx := range r.Transactions() {
		switch tx.Kind() {
		case database.KindMessage, database.KindPhotoShare:
			if tx.SenderID() == s.userID || tx.ReceiverID() == s.userID {
				s.messages = append(s.messages, tx)
			}
		}
	}

	return len(s.messages)
}

// ChatHistory opens every held message the user has the sender's key for.
// Messages that can't be opened are left out.
func (s *Shard) ChatHistory(ks filter.KeyLookup) []ChatLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lines []ChatLine
	for _, tx := range s.messages {
		key, exists := ks.Get(s.userID, tx.SenderID())
		if !exists {
			continue
		}

		content, err := tx.Content(key)
		if err != nil {
			continue
		}

		lines = append(lines, ChatLine{
			Timestamp:  tx.Timestamp(),
			SenderID:   tx.SenderID(),
			ReceiverID: tx.ReceiverID(),
			Kind:       tx.Kind(),
			Content:    content,
		})
	}

	return lines
}
