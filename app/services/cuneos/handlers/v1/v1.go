// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/v1/accessgrp"
	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/v1/chaingrp"
	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/v1/profilegrp"
	"github.com/MichaelGiresi/cuneos/business/core/access"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/ledger"
	"github.com/MichaelGiresi/cuneos/foundation/events"
	"github.com/MichaelGiresi/cuneos/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Ledger  *ledger.Ledger
	Profile *profile.Core
	Access  *access.Core
	Evts    *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	cgh := chaingrp.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		WS: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/chain", cgh.Chain)
	app.Handle(http.MethodGet, version, "/chain/:number", cgh.Block)
	app.Handle(http.MethodGet, version, "/difficulty", cgh.Difficulty)
	app.Handle(http.MethodGet, version, "/miners", cgh.Miners)
	app.Handle(http.MethodGet, version, "/events", cgh.Events)

	pgh := profilegrp.Handlers{
		Profile: cfg.Profile,
	}

	app.Handle(http.MethodGet, version, "/profiles", pgh.Query)
	app.Handle(http.MethodGet, version, "/profiles/:user", pgh.QueryByID)

	agh := accessgrp.Handlers{
		Access: cfg.Access,
	}

	app.Handle(http.MethodPost, version, "/profiles/:user/relevant", agh.Relevant)
	app.Handle(http.MethodPost, version, "/profiles/:user/shares", agh.Share)
	app.Handle(http.MethodDelete, version, "/profiles/:user/shares/:target", agh.Revoke)
}
