package boundary

import (
	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/perf"
)

// FromGeneric converts a generic calculator result.
func FromGeneric(a perf.GenericAttributes) model.Result {
	return model.Result{PP: a.PP(), Stars: a.Stars()}
}

// FromRelax converts a relax calculator result.
func FromRelax(a perf.RelaxAttributes) model.Result {
	return model.Result{PP: a.PP, Stars: a.Difficulty.Stars}
}
