package keys_test

import (
	"errors"
	"testing"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestKeyShare(t *testing.T) {
	exchanges := []keys.Exchange{keys.X25519, keys.Secp256k1}

	t.Log("Given the need to share a profile key between two users.")
	{
		for testID, ex := range exchanges {
			f := func(t *testing.T) {
				alice, err := keys.Generate(ex)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to generate alice's keys: %v", failed, testID, err)
				}
				bob, err := keys.Generate(ex)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to generate bob's keys: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to generate key pairs.", success, testID)

				if alice.ProfileKey == bob.ProfileKey {
					t.Fatalf("\t%s\tTest %d:\tShould generate independent profile keys.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould generate independent profile keys.", success, testID)

				ab, err := alice.SharedSecret(bob.Public)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould derive alice's shared secret: %v", failed, testID, err)
				}
				ba, err := bob.SharedSecret(alice.Public)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould derive bob's shared secret: %v", failed, testID, err)
				}
				if ab != ba {
					t.Fatalf("\t%s\tTest %d:\tShould derive the same shared secret on both sides.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould derive the same shared secret on both sides.", success, testID)

				wrapped, err := alice.WrapProfileKey(bob.Public)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould wrap alice's profile key: %v", failed, testID, err)
				}

				got, err := bob.UnwrapProfileKey(alice.Public, wrapped)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould unwrap alice's profile key: %v", failed, testID, err)
				}
				if got != alice.ProfileKey {
					t.Fatalf("\t%s\tTest %d:\tShould recover alice's profile key.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould recover alice's profile key.", success, testID)

				eve, err := keys.Generate(ex)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to generate eve's keys: %v", failed, testID, err)
				}
				if _, err := eve.UnwrapProfileKey(alice.Public, wrapped); !errors.Is(err, seal.ErrOpen) {
					t.Fatalf("\t%s\tTest %d:\tShould not let a third party unwrap the key: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould not let a third party unwrap the key.", success, testID)
			}

			t.Run(ex.Name(), f)
		}
	}
}

func TestInvalidPublicKey(t *testing.T) {
	t.Log("Given the need to reject unusable peer keys.")
	{
		kp, err := keys.Generate(keys.X25519)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate keys: %v", failed, err)
		}

		if _, err := kp.SharedSecret([]byte{1, 2, 3}); !errors.Is(err, keys.ErrInvalidPublicKey) {
			t.Fatalf("\t%s\tShould reject a short public key: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a short public key.", success)

		if _, err := keys.ParseExchange("rsa"); err == nil {
			t.Fatalf("\t%s\tShould reject an unknown exchange.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown exchange.", success)
	}
}
