// Package accessgrp maintains the group of handlers that share, revoke and
// fetch readable profiles on behalf of a registered user.
package accessgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MichaelGiresi/cuneos/business/core/access"
	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/business/web/errs"
	"github.com/MichaelGiresi/cuneos/foundation/validate"
	"github.com/MichaelGiresi/cuneos/foundation/web"
)

// Handlers manages the set of access endpoints.
type Handlers struct {
	Access *access.Core
}

// Relevant returns the profiles the user can read that pass the filter in
// the request body.
func (h *Handlers) Relevant(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var flt filter.Filter
	if err := web.Decode(r, &flt); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode filter: %w", err), http.StatusBadRequest)
	}

	res, err := h.Access.Relevant(ctx, web.Param(r, "user"), flt)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toRelevant(res), http.StatusOK)
}

// Share gives the user named in the body a key to the owner's profile.
func (h *Handlers) Share(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req grant
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode request: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	owner := web.Param(r, "user")
	miner, err := h.Access.Share(ctx, owner, req.UserID)
	if err != nil {
		return toTrusted(err)
	}

	resp := change{Owner: owner, UserID: req.UserID, Miner: miner}
	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Revoke takes back the target's key to the owner's profile.
func (h *Handlers) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner := web.Param(r, "user")
	target := web.Param(r, "target")

	miner, err := h.Access.Revoke(ctx, owner, target)
	if err != nil {
		return toTrusted(err)
	}

	resp := change{Owner: owner, UserID: target, Miner: miner}
	return web.Respond(ctx, w, resp, http.StatusOK)
}

func toTrusted(err error) error {
	switch {
	case errors.Is(err, access.ErrUnknownUser):
		return errs.NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, access.ErrSelf):
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	return err
}
