package disaggregate

import (
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/landex/landex/internal/fraction"
	"github.com/landex/landex/internal/frame"
)

// TestProperty_MassConservation validates that splitting a coarse class over
// observed fractions conserves the total year value at every key with
// observed coverage: the fine-grained rows sum back to the original value.
func TestProperty_MassConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fine-grained rows sum to the coarse value", prop.ForAll(
		func(obsA, obsB, value float64) bool {
			if obsA+obsB == 0 {
				return true // zero-total keys are the documented non-conservation case
			}

			observed := frame.New("region_id", "basin_id", "snow", "sparse")
			observed.Append("1", "10", format(obsA), format(obsB))
			ft, err := fraction.Calculate(observed, fraction.Options{
				MetricField: "basin_id",
				Classes:     []string{"snow", "sparse"},
			})
			if err != nil {
				return false
			}

			projected := frame.New("region_id", "metric_id", "landclass", "2010")
			projected.Append("1", "10", "RockIceDesert", format(value))

			out, err := Split(projected, ft, Options{
				TargetClass: "RockIceDesert",
				Years:       []int{2010},
			})
			if err != nil {
				return false
			}
			if out.Len() != 2 {
				return false
			}

			idx, err := out.RequireColumns("2010")
			if err != nil {
				return false
			}
			sum := 0.0
			for i := 0; i < out.Len(); i++ {
				cell, err := out.Float(i, idx[0])
				if err != nil || !cell.Valid {
					return false
				}
				sum += cell.Float64
			}
			return math.Abs(sum-value) <= 1e-9*math.Max(1, math.Abs(value))
		},
		gen.Float64Range(0, 1e6),
		gen.Float64Range(0, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
