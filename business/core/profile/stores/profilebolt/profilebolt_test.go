package profilebolt_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/business/core/profile/stores/profilebolt"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestStore(t *testing.T) {
	t.Log("Given the need to keep profiles in a bolt file.")
	{
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "profiles.db")

		store, err := profilebolt.NewStore(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the store: %v", failed, err)
		}

		for _, id := range []string{"dave", "alice", "bob"} {
			p := profile.Profile{UserID: id, Encrypted: []byte(id + "-sealed"), Algorithm: seal.ChaCha20Poly1305}
			if err := store.Save(ctx, p); err != nil {
				t.Fatalf("\t%s\tShould be able to save %s: %v", failed, id, err)
			}
		}

		if err := store.Save(ctx, profile.Profile{UserID: "dave", Encrypted: []byte("dave-sealed"), Deleted: true}); err != nil {
			t.Fatalf("\t%s\tShould be able to replace dave: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to save profiles.", success)

		if err := store.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the store: %v", failed, err)
		}

		store, err = profilebolt.NewStore(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reopen the store: %v", failed, err)
		}
		defer store.Close()

		ps, err := store.Query(ctx)
		if err != nil || len(ps) != 3 {
			t.Fatalf("\t%s\tShould return every profile: %d %v", failed, len(ps), err)
		}
		if ps[0].UserID != "dave" || ps[1].UserID != "alice" || ps[2].UserID != "bob" {
			t.Fatalf("\t%s\tShould scan in the order first saved: %v", failed, ps)
		}
		t.Logf("\t%s\tShould scan in the order first saved.", success)

		if !ps[0].Deleted || string(ps[0].Encrypted) != "dave-sealed" {
			t.Fatalf("\t%s\tShould replace a profile in place: %+v", failed, ps[0])
		}
		t.Logf("\t%s\tShould replace a profile in place.", success)

		p, err := store.QueryByID(ctx, "alice")
		if err != nil || string(p.Encrypted) != "alice-sealed" || p.Algorithm != seal.ChaCha20Poly1305 {
			t.Fatalf("\t%s\tShould find alice: %+v %v", failed, p, err)
		}
		t.Logf("\t%s\tShould find alice.", success)

		if _, err := store.QueryByID(ctx, "eve"); !errors.Is(err, profile.ErrNotFound) {
			t.Fatalf("\t%s\tShould report a missing profile: %v", failed, err)
		}
		t.Logf("\t%s\tShould report a missing profile.", success)
	}
}
