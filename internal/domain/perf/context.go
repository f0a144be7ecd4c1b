package perf

import "github.com/okian/refxpp/internal/domain/model"

// GenericContext configures the generic calculator. It is built once and
// passed by value.
type GenericContext struct {
	Mode     model.Mode
	Mods     model.Mods
	Combo    uint32
	Misses   uint32
	Scope    model.Scope
	Accuracy float64
}

// RelaxContext configures the relax calculator. Accuracy is single precision.
type RelaxContext struct {
	Mods     model.Mods
	Combo    uint32
	Misses   uint32
	Scope    model.Scope
	Tuning   model.RelaxTuning
	Accuracy float32
}
