// Package boundary is the marshaling layer behind the native exports. It
// validates borrowed inputs, selects and configures a calculator family and
// reports every failure as a classified error. Nothing here holds state
// between calls.
package boundary

import (
	"fmt"

	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/perf"
	"github.com/okian/refxpp/internal/domain/scoring"
	"github.com/okian/refxpp/internal/domain/variant"
)

const (
	opPath  = "calculate_score"
	opBytes = "calculate_score_bytes"
)

// PathRequest is the input of the path based entry point.
type PathRequest struct {
	Path  string
	Score model.Score
}

// BytesRequest is the input of the buffer based entry point. Tuning values
// in Score are ignored.
type BytesRequest struct {
	Data  []byte
	Score model.Score
}

// Calculator runs the two entry points with a configured context builder.
type Calculator struct {
	builder *scoring.Builder
}

// NewCalculator creates a calculator. A nil builder reads accuracy as percent.
func NewCalculator(b *scoring.Builder) *Calculator {
	if b == nil {
		b = scoring.NewBuilder()
	}
	return &Calculator{builder: b}
}

// CalculateScore runs the path entry point with default settings.
func CalculateScore(req PathRequest) (model.Result, error) {
	return NewCalculator(nil).CalculateScore(req)
}

// CalculateScoreBytes runs the buffer entry point with default settings.
func CalculateScoreBytes(req BytesRequest) (model.Result, error) {
	return NewCalculator(nil).CalculateScoreBytes(req)
}

// Select exposes variant selection for callers that report it.
func (c *Calculator) Select(s model.Score) (variant.Variant, error) {
	v, err := variant.Select(s.Mode, s.Mods)
	if err != nil {
		return variant.Variant{}, classify("select", err)
	}
	return v, nil
}

// CalculateScore loads the beatmap at req.Path and evaluates the play,
// applying tuning values when the relax family is selected.
func (c *Calculator) CalculateScore(req PathRequest) (res model.Result, err error) {
	defer recoverTo(opPath, &err)

	v, err := variant.Select(req.Score.Mode, req.Score.Mods)
	if err != nil {
		return model.Result{}, classify(opPath, err)
	}
	ctx, err := c.builder.Build(v, req.Score)
	if err != nil {
		return model.Result{}, classify(opPath, err)
	}
	if req.Path == "" {
		return model.Result{}, invalid(opPath, fmt.Errorf("empty beatmap path"))
	}
	bm, err := perf.LoadPath(req.Path)
	if err != nil {
		return model.Result{}, classify(opPath, err)
	}
	return evaluate(opPath, bm, ctx)
}

// CalculateScoreBytes parses req.Data and evaluates the play without tuning
// values. req.Data is only read during the call.
func (c *Calculator) CalculateScoreBytes(req BytesRequest) (res model.Result, err error) {
	defer recoverTo(opBytes, &err)

	v, err := variant.Select(req.Score.Mode, req.Score.Mods)
	if err != nil {
		return model.Result{}, classify(opBytes, err)
	}
	ctx, err := c.builder.BuildReduced(v, req.Score)
	if err != nil {
		return model.Result{}, classify(opBytes, err)
	}
	bm, err := perf.LoadBytes(req.Data)
	if err != nil {
		return model.Result{}, classify(opBytes, err)
	}
	return evaluate(opBytes, bm, ctx)
}

func evaluate(op string, bm *perf.Beatmap, ctx scoring.Context) (model.Result, error) {
	switch c := ctx.(type) {
	case scoring.Generic:
		a, err := perf.CalculateGeneric(bm, c.Params)
		if err != nil {
			return model.Result{}, classify(op, err)
		}
		return FromGeneric(a), nil
	case scoring.Relax:
		a, err := perf.CalculateRelax(bm, c.Params)
		if err != nil {
			return model.Result{}, classify(op, err)
		}
		return FromRelax(a), nil
	}
	return model.Result{}, &Error{Op: op, Kind: ErrComputation, Err: fmt.Errorf("unsupported context %T", ctx)}
}

// recoverTo turns a panic in the calculation into a computation failure.
func recoverTo(op string, err *error) {
	if r := recover(); r != nil {
		*err = &Error{Op: op, Kind: ErrComputation, Err: fmt.Errorf("panic: %v", r)}
	}
}
