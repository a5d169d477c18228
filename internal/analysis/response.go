package analysis

import (
	"math"

	"github.com/san-kum/riccati/internal/dynamo"
)

// SettlingTime returns the first time after which ‖x‖ stays within band
// times its initial norm. ok is false when the trajectory never settles.
func SettlingTime(res *dynamo.Result, band float64) (t float64, ok bool) {
	if len(res.States) == 0 {
		return 0, false
	}
	limit := band * res.States[0].Norm()
	last := -1
	for i := len(res.States) - 1; i >= 0; i-- {
		if res.States[i].Norm() > limit {
			last = i
			break
		}
	}
	switch {
	case last == -1:
		return 0, true
	case last == len(res.States)-1:
		return math.Inf(1), false
	}
	return res.Times[last+1], true
}

// Peak returns the largest absolute value of state component i.
func Peak(res *dynamo.Result, i int) float64 {
	peak := 0.0
	for _, v := range res.Column(i) {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}
