package physics

import (
	"fmt"
	"slices"

	"github.com/san-kum/riccati/internal/dynamo"
)

// Tunable is a model whose physical parameters can be changed by name.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ApplyParams sets every override on sys in name order. It stops at the
// first unknown name.
func ApplyParams(sys dynamo.System, overrides map[string]float64) error {
	if len(overrides) == 0 {
		return nil
	}
	t, ok := sys.(Tunable)
	if !ok {
		return fmt.Errorf("model %T has no parameters", sys)
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := t.SetParam(name, overrides[name]); err != nil {
			return err
		}
	}
	return nil
}
