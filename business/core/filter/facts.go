package filter

import (
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

// ReportThreshold is the number of reports that hides a user from everyone.
const ReportThreshold = 2

// Facts holds what the chain says about who blocked, reported, revoked and
// matched whom.
type Facts struct {
	blocked map[database.Pair]struct{}
	revoked map[database.Pair]struct{}
	matched map[database.Pair]struct{}
	reports map[string]int
}

// NewFacts scans the transactions in chain order.
func NewFacts(trans []database.Tx) Facts {
	f := Facts{
		blocked: make(map[database.Pair]struct{}),
		revoked: make(map[database.Pair]struct{}),
		matched: make(map[database.Pair]struct{}),
		reports: make(map[string]int),
	}

	for _, tx := range trans {
		switch tx.Kind() {
		case database.KindBlockUser:
			f.blocked[database.Pair{First: tx.SenderID(), Second: tx.ReceiverID()}] = struct{}{}

		case database.KindReportUser:
			f.reports[tx.ReceiverID()]++

		case database.KindKeyRevocation:
			if pair, ok := tx.RevokedPair(); ok {
				f.revoked[pair] = struct{}{}
			}

		case database.KindMatch:
			if pair, ok := tx.MatchPair(); ok {
				f.matched[pair] = struct{}{}
			}
		}
	}

	return f
}

// Blocked reports whether either user blocked the other.
func (f Facts) Blocked(a, b string) bool {
	return f.either(f.blocked, a, b)
}

// Matched reports whether the users matched, in either order.
func (f Facts) Matched(a, b string) bool {
	return f.either(f.matched, a, b)
}

// Revoked reports whether the revoker took back the target's access.
func (f Facts) Revoked(revoker, target string) bool {
	_, exists := f.revoked[database.Pair{First: revoker, Second: target}]
	return exists
}

// Reports returns how many reports name the user.
func (f Facts) Reports(userID string) int {
	return f.reports[userID]
}

// Reported reports whether the user is at or above the report threshold.
func (f Facts) Reported(userID string) bool {
	return f.reports[userID] >= ReportThreshold
}

func (f Facts) either(set map[database.Pair]struct{}, a, b string) bool {
	if _, exists := set[database.Pair{First: a, Second: b}]; exists {
		return true
	}

	_, exists := set[database.Pair{First: b, Second: a}]
	return exists
}
