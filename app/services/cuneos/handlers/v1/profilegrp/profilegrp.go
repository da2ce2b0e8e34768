// Package profilegrp maintains the group of handlers for the sealed profile
// records. Profiles are only ever returned in their encrypted form.
package profilegrp

import (
	"context"
	"errors"
	"net/http"

	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/business/web/errs"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
	"github.com/MichaelGiresi/cuneos/foundation/web"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type sealedProfile struct {
	UserID    string        `json:"user_id"`
	Encrypted hexutil.Bytes `json:"encrypted_data"`
	Algorithm string        `json:"algorithm"`
	Deleted   bool          `json:"is_deleted"`
}

func toSealedProfile(p profile.Profile) sealedProfile {
	alg := p.Algorithm
	if alg == "" {
		alg = seal.Default
	}

	return sealedProfile{
		UserID:    p.UserID,
		Encrypted: p.Encrypted,
		Algorithm: string(alg),
		Deleted:   p.Deleted,
	}
}

// Handlers manages the set of profile endpoints.
type Handlers struct {
	Profile *profile.Core
}

// Query returns every stored profile in scan order.
func (h *Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	prfs, err := h.Profile.Query(ctx)
	if err != nil {
		return err
	}

	resp := make([]sealedProfile, len(prfs))
	for i, p := range prfs {
		resp[i] = toSealedProfile(p)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryByID returns the profile for the specified user.
func (h *Handlers) QueryByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	p, err := h.Profile.QueryByID(ctx, web.Param(r, "user"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toSealedProfile(p), http.StatusOK)
}
