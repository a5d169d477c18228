package dynamo

import "github.com/rs/zerolog"

// Trace logs the state norm and applied input every n steps at debug
// level. It counts steps from construction, so use one per run.
type Trace struct {
	log   zerolog.Logger
	every int
	step  int
}

func NewTrace(log zerolog.Logger, every int) *Trace {
	if every < 1 {
		every = 1
	}
	return &Trace{log: log, every: every}
}

func (o *Trace) OnStep(x State, u Control, t float64) {
	if o.step%o.every == 0 {
		o.log.Debug().Int("step", o.step).Float64("t", t).Float64("norm", x.Norm()).Floats64("u", u).Msg("sim step")
	}
	o.step++
}
