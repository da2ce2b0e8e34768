// Package viewgrp serves the browser page that follows the ledger events.
package viewgrp

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/MichaelGiresi/cuneos/foundation/web"
)

//go:embed assets/index.html
var index []byte

// Index writes the viewer page.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	web.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
