package database_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

func TestTxEncoding(t *testing.T) {
	key, err := seal.NewKey()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
	}

	msg, err := database.NewMessage("alice", "bob", "hello bob", key, "2025-03-05", "msg001")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to seal a message: %v", failed, err)
	}

	type table struct {
		name string
		tx   database.Tx
		kind database.Kind
	}

	tt := []table{
		{name: "transfer", tx: mustTransfer(t, "system", "alice", 10.5, "tx001"), kind: database.KindPeaceTransfer},
		{name: "deletion", tx: database.NewProfileDeletion("carol", "2025-03-05", "del001"), kind: database.KindProfileDeletion},
		{name: "update", tx: database.NewProfileUpdate("alice", []byte{1, 2, 3}, "2025-03-05", "upd001"), kind: database.KindProfileUpdate},
		{name: "match", tx: database.NewMatch("alice", "bob", "2025-03-05", "match001"), kind: database.KindMatch},
		{name: "revocation", tx: database.NewKeyRevocation("bob", "alice", "2025-03-05", "rev001"), kind: database.KindKeyRevocation},
		{name: "message", tx: msg, kind: database.KindMessage},
		{name: "like", tx: database.NewLike("alice", "bob", "2025-03-05", "like001"), kind: database.KindLike},
		{name: "block", tx: database.NewBlockUser("alice", "dave", "2025-03-05", "blk001"), kind: database.KindBlockUser},
		{name: "call", tx: database.NewVideoCall("alice", "bob", 300, "2025-03-05", "call001"), kind: database.KindVideoCall},
		{name: "report", tx: database.NewReportUser("bob", "dave", "spam", "2025-03-05", "rep001"), kind: database.KindReportUser},
		{name: "keyshare", tx: database.NewKeyShare("alice", "bob", []byte{9, 9}, "2025-03-05", "ks001"), kind: database.KindKeyShare},
	}

	t.Log("Given the need to encode transactions for hashing.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.kind)
			{
				f := func(t *testing.T) {
					data, err := json.Marshal(tst.tx)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to marshal: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to marshal.", success, testID)

					s := string(data)
					order := []string{`"kind"`, `"sender_id"`, `"receiver_id"`, `"timestamp"`, `"global_tx_id"`, `"payload"`}
					last := -1
					for _, field := range order {
						idx := strings.Index(s, field)
						if idx <= last {
							t.Fatalf("\t%s\tTest %d:\tShould encode %s in canonical order: %s", failed, testID, field, s)
						}
						last = idx
					}
					t.Logf("\t%s\tTest %d:\tShould encode fields in canonical order.", success, testID)

					var got database.Tx
					if err := json.Unmarshal(data, &got); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal: %v", failed, testID, err)
					}

					again, err := json.Marshal(got)
					if err != nil || string(again) != s {
						t.Fatalf("\t%s\tTest %d:\tShould re-encode to the same bytes: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould re-encode to the same bytes.", success, testID)

					if got.Kind() != tst.kind || got.ID() != tst.tx.ID() {
						t.Fatalf("\t%s\tTest %d:\tShould keep kind and id: %s %s", failed, testID, got.Kind(), got.ID())
					}
					t.Logf("\t%s\tTest %d:\tShould keep kind and id.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestTxRules(t *testing.T) {
	t.Log("Given the need to enforce transaction construction rules.")
	{
		if _, err := database.NewPeaceTransfer("system", "alice", math.NaN(), "2025-03-04", "nan"); err == nil {
			t.Fatalf("\t%s\tShould reject a NaN amount.", failed)
		}
		t.Logf("\t%s\tShould reject a NaN amount.", success)

		if _, err := json.Marshal(database.Tx{}); err == nil {
			t.Fatalf("\t%s\tShould refuse to encode a zero value transaction.", failed)
		}
		t.Logf("\t%s\tShould refuse to encode a zero value transaction.", success)

		del := database.NewProfileDeletion("carol", "2025-03-05", "del001")
		if del.ReceiverID() != database.SystemID || del.SenderID() != "carol" {
			t.Fatalf("\t%s\tShould address a deletion to the system: %s", failed, del)
		}
		t.Logf("\t%s\tShould address a deletion to the system.", success)

		rev := database.NewKeyRevocation("bob", "alice", "2025-03-05", "rev001")
		pair, ok := rev.RevokedPair()
		if !ok || pair != (database.Pair{First: "bob", Second: "alice"}) {
			t.Fatalf("\t%s\tShould record the revoker first: %+v", failed, pair)
		}
		t.Logf("\t%s\tShould record the revoker first.", success)

		raw := []byte(`{"kind":"Bogus","sender_id":"a","receiver_id":"b","timestamp":"t","global_tx_id":"x","payload":{}}`)
		var tx database.Tx
		if err := json.Unmarshal(raw, &tx); err == nil {
			t.Fatalf("\t%s\tShould reject an unknown kind.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown kind.", success)
	}
}

func TestTxContent(t *testing.T) {
	t.Log("Given the need to read sealed content.")
	{
		key, err := seal.NewKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}

		photo, err := database.NewPhotoShare("alice", "bob", "photo_url_123", key, "2025-03-05", "photo001")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to seal a photo: %v", failed, err)
		}

		got, err := photo.Content(key)
		if err != nil || got != "photo_url_123" {
			t.Fatalf("\t%s\tShould open with the sealing key: %q %v", failed, got, err)
		}
		t.Logf("\t%s\tShould open with the sealing key.", success)

		other, err := seal.NewKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		if _, err := photo.Content(other); !errors.Is(err, seal.ErrOpen) {
			t.Fatalf("\t%s\tShould fail with another key: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail with another key.", success)

		like := database.NewLike("alice", "bob", "2025-03-05", "like001")
		if _, err := like.Content(key); !errors.Is(err, database.ErrNoContent) {
			t.Fatalf("\t%s\tShould report no content on a like: %v", failed, err)
		}
		t.Logf("\t%s\tShould report no content on a like.", success)

		update := database.NewProfileUpdate("alice", []byte{1, 2, 3}, "2025-03-05", "upd001")
		p := update.Payload().(database.ProfileUpdate)
		p.Profile[0] = 99
		if update.Payload().(database.ProfileUpdate).Profile[0] != 1 {
			t.Fatalf("\t%s\tShould not expose the stored bytes.", failed)
		}
		t.Logf("\t%s\tShould not expose the stored bytes.", success)
	}
}
