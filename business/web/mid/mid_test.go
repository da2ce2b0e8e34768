package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/MichaelGiresi/cuneos/business/web/errs"
	"github.com/MichaelGiresi/cuneos/business/web/mid"
	"github.com/MichaelGiresi/cuneos/foundation/validate"
	"github.com/MichaelGiresi/cuneos/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestErrors(t *testing.T) {
	fieldErr := validate.Check(struct {
		Name string `json:"name" validate:"required"`
	}{})

	tt := []struct {
		name   string
		err    error
		panic  bool
		status int
		msg    string
		field  string
	}{
		{"trusted", errs.NewTrusted(errors.New("block not found"), http.StatusNotFound), false, http.StatusNotFound, "block not found", ""},
		{"fields", fieldErr, false, http.StatusBadRequest, "data validation error", "name"},
		{"untrusted", errors.New("disk on fire"), false, http.StatusInternalServerError, "Internal Server Error", ""},
		{"panic", nil, true, http.StatusInternalServerError, "Internal Server Error", ""},
	}

	t.Log("Given the need to report handler errors to the client.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the handler fails with a %s error.", testID, tst.name)
				{
					var panics int
					app := web.NewApp(
						make(chan os.Signal, 1),
						mid.Logger(zap.NewNop().Sugar()),
						mid.Errors(zap.NewNop().Sugar()),
						mid.Cors("*"),
						mid.Panics(func() { panics++ }),
					)

					h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						if tst.panic {
							panic("boom")
						}
						return tst.err
					}
					app.Handle(http.MethodGet, "v1", "/fail", h)

					r := httptest.NewRequest(http.MethodGet, "/v1/fail", nil)
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould respond with %d: got %d", failed, testID, tst.status, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould respond with %d.", success, testID, tst.status)

					var resp errs.Response
					if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould decode the response: %v", failed, testID, err)
					}

					if resp.Error != tst.msg {
						t.Fatalf("\t%s\tTest %d:\tShould report %q: got %q", failed, testID, tst.msg, resp.Error)
					}
					t.Logf("\t%s\tTest %d:\tShould report %q.", success, testID, tst.msg)

					if tst.field != "" {
						if _, exists := resp.Fields[tst.field]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould name the %s field: got %v", failed, testID, tst.field, resp.Fields)
						}
						t.Logf("\t%s\tTest %d:\tShould name the %s field.", success, testID, tst.field)
					}

					if tst.panic && panics != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould count the panic: got %d", failed, testID, panics)
					}

					if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
						t.Fatalf("\t%s\tTest %d:\tShould set the CORS origin: got %q", failed, testID, got)
					}
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestTrusted(t *testing.T) {
	t.Log("Given the need to carry a status with an error.")
	{
		base := errors.New("not found")
		err := errs.NewTrusted(base, http.StatusNotFound)

		if !errors.Is(err, base) {
			t.Fatalf("\t%s\tShould unwrap to the original error.", failed)
		}
		t.Logf("\t%s\tShould unwrap to the original error.", success)

		if tr := errs.GetTrusted(err); tr == nil || tr.Status != http.StatusNotFound {
			t.Fatalf("\t%s\tShould return the status: got %+v", failed, tr)
		}
		t.Logf("\t%s\tShould return the status.", success)

		if errs.IsTrusted(base) {
			t.Fatalf("\t%s\tShould not treat a plain error as trusted.", failed)
		}
		t.Logf("\t%s\tShould not treat a plain error as trusted.", success)
	}
}

func TestCors(t *testing.T) {
	tt := []struct {
		name    string
		origins []string
		origin  string
		allow   string
	}{
		{"wildcard", []string{"*"}, "http://viewer.local", "*"},
		{"listed", []string{"http://a.local", "http://viewer.local"}, "http://viewer.local", "http://viewer.local"},
		{"unlisted", []string{"http://a.local"}, "http://viewer.local", ""},
		{"no-origin", []string{"http://a.local"}, "", ""},
	}

	t.Log("Given the need to answer cross-origin requests.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the request comes from %q.", testID, tst.origin)
				{
					app := web.NewApp(make(chan os.Signal, 1), mid.Cors(tst.origins...))

					var served bool
					h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						served = true
						return nil
					}
					app.Handle(http.MethodGet, "v1", "/chain", h)

					r := httptest.NewRequest(http.MethodGet, "/v1/chain", nil)
					if tst.origin != "" {
						r.Header.Set("Origin", tst.origin)
					}
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					if !served {
						t.Fatalf("\t%s\tTest %d:\tShould always call the handler.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould always call the handler.", success, testID)

					if got := w.Header().Get("Access-Control-Allow-Origin"); got != tst.allow {
						t.Fatalf("\t%s\tTest %d:\tShould allow origin %q: got %q", failed, testID, tst.allow, got)
					}
					t.Logf("\t%s\tTest %d:\tShould allow origin %q.", success, testID, tst.allow)

					if tst.allow != "" && w.Header().Get("Access-Control-Allow-Methods") == "" {
						t.Fatalf("\t%s\tTest %d:\tShould list the allowed methods.", failed, testID)
					}
				}
			}

			t.Run(tst.name, f)
		}
	}
}
