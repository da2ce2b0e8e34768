package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MichaelGiresi/cuneos/business/sys/metrics"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestMetrics(t *testing.T) {
	t.Log("Given the need to expose ledger metrics.")
	{
		m := metrics.New()
		m.RecordBlock(metrics.Block{
			Miner:      "Miner2",
			Height:     4,
			Txs:        3,
			Duration:   250 * time.Millisecond,
			Difficulty: 3.5,
			EMA:        time.Second,
		})
		m.RecordRequest(http.StatusOK)

		w := httptest.NewRecorder()
		m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body := w.Body.String()
		for _, exp := range []string{
			"cuneos_ledger_height 4",
			"cuneos_ledger_difficulty 3.5",
			`cuneos_ledger_miner_blocks_total{miner="Miner2"} 1`,
			`cuneos_web_requests_total{status="200"} 1`,
		} {
			if !strings.Contains(body, exp) {
				t.Fatalf("\t%s\tShould expose %q.", failed, exp)
			}
		}
		t.Logf("\t%s\tShould expose the recorded values.", success)
	}
}
