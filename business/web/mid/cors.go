package mid

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/MichaelGiresi/cuneos/foundation/web"
)

// Cross-origin settings shared by every route of the service.
const (
	corsMethods = "GET, POST, DELETE, OPTIONS"
	corsHeaders = "Accept, Content-Type, Content-Length, Origin"
	corsMaxAge  = 600
)

// Cors answers cross-origin requests from the listed origins. A "*" entry
// admits any origin. Requests from other origins are served without the
// headers, leaving the browser to refuse the response.
func Cors(origins ...string) web.Middleware {
	wildcard := slices.Contains(origins, "*")

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Add("Vary", "Origin")

			switch origin := r.Header.Get("Origin"); {
			case wildcard:
				hdr.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				hdr.Set("Access-Control-Allow-Origin", origin)
			default:
				return handler(ctx, w, r)
			}

			hdr.Set("Access-Control-Allow-Methods", corsMethods)
			hdr.Set("Access-Control-Allow-Headers", corsHeaders)
			hdr.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
