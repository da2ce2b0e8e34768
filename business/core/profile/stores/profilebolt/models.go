package profilebolt

import (
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// dbProfile is the msgpack record kept in the profiles bucket.
type dbProfile struct {
	UserID    string `msgpack:"user_id"`
	Encrypted []byte `msgpack:"encrypted_data"`
	Algorithm string `msgpack:"algorithm,omitempty"`
	Deleted   bool   `msgpack:"is_deleted"`
}

func toDBProfile(p profile.Profile) dbProfile {
	return dbProfile{
		UserID:    p.UserID,
		Encrypted: p.Encrypted,
		Algorithm: string(p.Algorithm),
		Deleted:   p.Deleted,
	}
}

func toCoreProfile(dbPrf dbProfile) profile.Profile {
	return profile.Profile{
		UserID:    dbPrf.UserID,
		Encrypted: dbPrf.Encrypted,
		Algorithm: seal.Algorithm(dbPrf.Algorithm),
		Deleted:   dbPrf.Deleted,
	}
}
