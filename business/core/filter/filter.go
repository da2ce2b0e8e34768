// Package filter decides which profiles a user can see and ranks them. The
// decision combines facts recorded on the chain with the keys the fetching
// user holds.
package filter

import (
	"slices"
	"sort"
	"strings"

	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Filter holds the optional predicates applied to readable profiles. Zero
// values leave a predicate unset.
type Filter struct {
	Location      string   `json:"location,omitempty"`
	MinAge        *uint32  `json:"min_age,omitempty"`
	MaxAge        *uint32  `json:"max_age,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	BioKeywords   []string `json:"bio_keywords,omitempty"`
	MinScore      *uint32  `json:"min_score,omitempty"`
	RecentMatches bool     `json:"recent_matches,omitempty"`
}

// KeyLookup returns the key a holder keeps for a subject.
type KeyLookup interface {
	Get(holder, subject string) (seal.Key, bool)
}

// Ranked is a readable profile that passed the filter.
type Ranked struct {
	Profile profile.Profile `json:"profile"`
	Data    profile.Data    `json:"data"`
	Score   uint32          `json:"score"`
}

// Result holds the visible profiles and the users whose profiles the
// fetcher has no usable key for.
type Result struct {
	Ranked       []Ranked `json:"ranked"`
	Inaccessible []string `json:"inaccessible"`
}

// Apply walks the candidates in order and returns those the fetcher can see.
// A candidate is skipped when it is the fetcher, deleted, blocked in either
// direction or reported too often. A candidate is inaccessible when the
// fetcher holds no key for it or the candidate revoked the fetcher's access.
// Profiles that fail to open with a held key are skipped. Results are sorted
// by score only when a minimum score is requested.
func Apply(flt Filter, fetcherID string, candidates []profile.Profile, keys KeyLookup, facts Facts, score func(userID string) uint32) Result {
	var res Result

	for _, p := range candidates {
		if p.Deleted || p.UserID == fetcherID {
			continue
		}

		if facts.Blocked(fetcherID, p.UserID) || facts.Reported(p.UserID) {
			continue
		}

		key, exists := keys.Get(fetcherID, p.UserID)
		if !exists || facts.Revoked(p.UserID, fetcherID) {
			res.Inaccessible = append(res.Inaccessible, p.UserID)
			continue
		}

		data, err := p.Decrypt(key)
		if err != nil {
			continue
		}

		s := score(p.UserID)
		if !flt.Match(data, s) {
			continue
		}

		if flt.RecentMatches && !facts.Matched(fetcherID, p.UserID) {
			continue
		}

		res.Ranked = append(res.Ranked, Ranked{Profile: p, Data: data, Score: s})
	}

	if flt.MinScore != nil {
		sort.SliceStable(res.Ranked, func(i, j int) bool {
			return res.Ranked[i].Score > res.Ranked[j].Score
		})
	}

	return res
}

// Match applies the predicates that depend only on the profile record and
// its interaction score.
func (flt Filter) Match(data profile.Data, score uint32) bool {
	if flt.Location != "" && data.Location != flt.Location {
		return false
	}

	if flt.MinAge != nil && data.Age < *flt.MinAge {
		return false
	}

	if flt.MaxAge != nil && data.Age > *flt.MaxAge {
		return false
	}

	if len(flt.Interests) > 0 && !slices.ContainsFunc(data.Interests, func(i string) bool {
		return slices.Contains(flt.Interests, i)
	}) {
		return false
	}

	if len(flt.BioKeywords) > 0 {
		bio := strings.ToLower(data.Bio)
		if !slices.ContainsFunc(flt.BioKeywords, func(kw string) bool {
			return strings.Contains(bio, strings.ToLower(kw))
		}) {
			return false
		}
	}

	if flt.MinScore != nil && score < *flt.MinScore {
		return false
	}

	return true
}
