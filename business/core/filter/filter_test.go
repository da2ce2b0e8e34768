package filter_test

import (
	"slices"
	"testing"

	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keystore"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func u32(v uint32) *uint32 {
	return &v
}

type world struct {
	keys       *keystore.Store
	candidates []profile.Profile
	trans      []database.Tx
	scores     map[string]uint32
}

func (w *world) score(userID string) uint32 {
	return w.scores[userID]
}

func (w *world) ranked(flt filter.Filter) ([]string, []string) {
	res := filter.Apply(flt, "bob", w.candidates, w.keys, filter.NewFacts(w.trans), w.score)

	var ids []string
	for _, r := range res.Ranked {
		ids = append(ids, r.Profile.UserID)
	}

	return ids, res.Inaccessible
}

func newWorld(t *testing.T) *world {
	t.Helper()

	w := world{
		keys:   keystore.New(),
		scores: map[string]uint32{"alice": 15, "hank": 40},
	}

	people := []struct {
		id   string
		data profile.Data
	}{
		{"bob", profile.Data{Name: "Bob", Age: 30, Location: "CA", Interests: []string{"hiking"}}},
		{"alice", profile.Data{Name: "Alice", Age: 28, Bio: "Love hiking and photography", Location: "CA", Interests: []string{"hiking", "photography"}}},
		{"carol", profile.Data{Name: "Carol", Age: 27, Location: "CA", Interests: []string{"hiking"}}},
		{"dave", profile.Data{Name: "Dave", Age: 29, Location: "CA", Interests: []string{"hiking"}}},
		{"eve", profile.Data{Name: "Eve", Age: 26, Location: "CA", Interests: []string{"hiking"}}},
		{"frank", profile.Data{Name: "Frank", Age: 27, Location: "CA", Interests: []string{"hiking"}}},
		{"gina", profile.Data{Name: "Gina", Age: 27, Location: "CA", Interests: []string{"hiking"}}},
		{"hank", profile.Data{Name: "Hank", Age: 29, Bio: "Coffee and HIKING", Location: "CA", Interests: []string{"hiking"}}},
	}

	for _, person := range people {
		key, err := seal.NewKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}

		p, err := profile.New(person.id, person.data, key)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to seal %s: %v", failed, person.id, err)
		}

		if person.id == "carol" {
			p.Delete()
		}

		w.keys.SetSelf(person.id, key)
		if person.id != "frank" {
			w.keys.Share(person.id, "bob", key)
		}

		w.candidates = append(w.candidates, p)
	}

	w.trans = []database.Tx{
		database.NewBlockUser("dave", "bob", "2025-03-08", "block_dave_bob"),
		database.NewReportUser("alice", "eve", "spam", "2025-03-08", "report_alice_eve"),
		database.NewReportUser("hank", "eve", "harassment", "2025-03-08", "report_hank_eve"),
		database.NewReportUser("alice", "hank", "spam", "2025-03-08", "report_alice_hank"),
		database.NewKeyRevocation("gina", "bob", "2025-03-09", "revoke_gina_bob"),
		database.NewMatch("alice", "bob", "2025-03-06", "match_alice_bob"),
	}

	return &w
}

func TestApply(t *testing.T) {
	type table struct {
		name   string
		flt    filter.Filter
		exp    []string
		revoke bool
	}

	tt := []table{
		{name: "scenario", flt: filter.Filter{Location: "CA", MinAge: u32(25), MaxAge: u32(30), Interests: []string{"hiking"}}, exp: []string{"alice", "hank"}},
		{name: "age", flt: filter.Filter{MinAge: u32(29), MaxAge: u32(29)}, exp: []string{"hank"}},
		{name: "location", flt: filter.Filter{Location: "NY"}, exp: nil},
		{name: "interest", flt: filter.Filter{Interests: []string{"photography", "chess"}}, exp: []string{"alice"}},
		{name: "keyword", flt: filter.Filter{BioKeywords: []string{"coffee"}}, exp: []string{"hank"}},
		{name: "keywordcase", flt: filter.Filter{BioKeywords: []string{"Hiking"}}, exp: []string{"alice", "hank"}},
		{name: "score", flt: filter.Filter{MinScore: u32(10)}, exp: []string{"hank", "alice"}},
		{name: "recent", flt: filter.Filter{RecentMatches: true}, exp: []string{"alice"}},
		{name: "removed", flt: filter.Filter{Location: "CA", MinAge: u32(25), MaxAge: u32(30), Interests: []string{"hiking"}}, exp: []string{"hank"}, revoke: true},
	}

	t.Log("Given the need to filter the profiles bob can see.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen applying the %s filter.", testID, tst.name)
			{
				f := func(t *testing.T) {
					w := newWorld(t)
					if tst.revoke {
						w.keys.Remove("bob", "alice")
					}

					got, inaccessible := w.ranked(tst.flt)
					if !slices.Equal(got, tst.exp) {
						t.Fatalf("\t%s\tTest %d:\tShould return %v: got %v", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould return %v.", success, testID, tst.exp)

					expInaccessible := []string{"frank", "gina"}
					if tst.revoke {
						expInaccessible = []string{"alice", "frank", "gina"}
					}
					if !slices.Equal(inaccessible, expInaccessible) {
						t.Fatalf("\t%s\tTest %d:\tShould report %v inaccessible: got %v", failed, testID, expInaccessible, inaccessible)
					}
					t.Logf("\t%s\tTest %d:\tShould report %v inaccessible.", success, testID, expInaccessible)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestFacts(t *testing.T) {
	t.Log("Given the need to read facts from the chain.")
	{
		facts := filter.NewFacts([]database.Tx{
			database.NewBlockUser("dave", "bob", "2025-03-08", "b1"),
			database.NewReportUser("bob", "dave", "spam", "2025-03-08", "r1"),
			database.NewKeyRevocation("alice", "bob", "2025-03-09", "k1"),
			database.NewMatch("alice", "bob", "2025-03-06", "m1"),
		})

		if !facts.Blocked("bob", "dave") || !facts.Blocked("dave", "bob") || facts.Blocked("bob", "alice") {
			t.Fatalf("\t%s\tShould see a block in either direction.", failed)
		}
		t.Logf("\t%s\tShould see a block in either direction.", success)

		if facts.Reports("dave") != 1 || facts.Reported("dave") {
			t.Fatalf("\t%s\tShould not hide a user with a single report.", failed)
		}
		t.Logf("\t%s\tShould not hide a user with a single report.", success)

		if !facts.Revoked("alice", "bob") || facts.Revoked("bob", "alice") {
			t.Fatalf("\t%s\tShould keep the direction of a revocation.", failed)
		}
		t.Logf("\t%s\tShould keep the direction of a revocation.", success)

		if !facts.Matched("bob", "alice") {
			t.Fatalf("\t%s\tShould see a match in either order.", failed)
		}
		t.Logf("\t%s\tShould see a match in either order.", success)
	}
}
