package validate_test

import (
	"testing"

	"github.com/MichaelGiresi/cuneos/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type settings struct {
	Name     string  `json:"name" validate:"required"`
	Interval int     `json:"interval" validate:"gte=1"`
	Max      float64 `json:"max" validate:"lte=64"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate values against their tags.")
	{
		if err := validate.Check(settings{Name: "ledger", Interval: 3, Max: 4}); err != nil {
			t.Fatalf("\t%s\tShould accept a valid value: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid value.", success)

		err := validate.Check(settings{Interval: 0, Max: 65})
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould return field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould return field errors.", success)

		fields := validate.GetFieldErrors(err).Fields()
		for _, name := range []string{"name", "interval", "max"} {
			if _, exists := fields[name]; !exists {
				t.Fatalf("\t%s\tShould report the %q field by its json name: %v", failed, name, fields)
			}
		}
		t.Logf("\t%s\tShould report fields by their json name.", success)
	}
}
