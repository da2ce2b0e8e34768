package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MichaelGiresi/cuneos/business/core/access"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"go.uber.org/zap"
)

var seedInterests = [][]string{
	{"hiking", "reading"},
	{"music", "travel"},
	{"photography", "coffee"},
	{"hiking", "photography"},
}

// seedProfiles registers every workload user with a fresh key pair and
// gives them a sealed profile. Profiles already in the store are left
// alone, but since keys only live in memory they can no longer be opened
// after a restart.
func seedProfiles(ctx context.Context, log *zap.SugaredLogger, core *profile.Core, acc *access.Core, ex keys.Exchange, users []string) error {
	for i, user := range users {
		if user == "" {
			return errors.New("user name is required")
		}

		kp, err := keys.Generate(ex)
		if err != nil {
			return err
		}
		acc.Register(user, kp)

		_, err = core.QueryByID(ctx, user)
		switch {
		case err == nil:
			log.Infow("startup", "status", "profile exists", "user", user)
			continue

		case !errors.Is(err, profile.ErrNotFound):
			return err
		}

		data := profile.Data{
			Name:      strings.ToUpper(user[:1]) + user[1:],
			Age:       uint32(25 + i%6),
			Bio:       fmt.Sprintf("Enjoys %s", strings.Join(seedInterests[i%len(seedInterests)], " and ")),
			Interests: seedInterests[i%len(seedInterests)],
			Location:  "CA",
		}

		if _, err := core.Create(ctx, user, data, kp.ProfileKey); err != nil {
			return err
		}

		log.Infow("startup", "status", "profile created", "user", user, "exchange", ex.Name())
	}

	return nil
}
