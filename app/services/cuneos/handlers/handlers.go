// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/debug/checkgrp"
	v1 "github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/v1"
	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers/viewgrp"
	"github.com/MichaelGiresi/cuneos/business/core/access"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/business/sys/metrics"
	"github.com/MichaelGiresi/cuneos/business/web/mid"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/ledger"
	"github.com/MichaelGiresi/cuneos/foundation/events"
	"github.com/MichaelGiresi/cuneos/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown    chan os.Signal
	CorsOrigins []string
	Log         *zap.SugaredLogger
	Metrics     *metrics.Metrics
	Ledger      *ledger.Ledger
	Profile     *profile.Core
	Access      *access.Core
	Evts        *events.Events
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Metrics(cfg.Metrics),
		mid.Errors(cfg.Log),
		mid.Cors(cfg.CorsOrigins...),
		mid.Panics(cfg.Metrics.AddPanic),
	)

	// Accept CORS 'OPTIONS' preflight requests.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h)

	// Register the viewer page.
	app.Handle(http.MethodGet, "", "/", viewgrp.Index)

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log:     cfg.Log,
		Ledger:  cfg.Ledger,
		Profile: cfg.Profile,
		Access:  cfg.Access,
		Evts:    cfg.Evts,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service, including the prometheus
// scrape endpoint.
func DebugMux(build string, log *zap.SugaredLogger, m *metrics.Metrics, l *ledger.Ledger) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build:  build,
		Log:    log,
		Height: l.Height,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	mux.Handle("/metrics", m.Handler())

	return mux
}
