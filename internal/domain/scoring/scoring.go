// Package scoring turns a caller supplied score into the immutable context a
// calculator family consumes.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/perf"
	"github.com/okian/refxpp/internal/domain/variant"
)

// AccuracyScale is the unit accuracy arrives in.
type AccuracyScale string

const (
	// ScalePercent reads accuracy as 0-100.
	ScalePercent AccuracyScale = "percent"
	// ScaleFraction reads accuracy as 0-1 and multiplies it by 100.
	ScaleFraction AccuracyScale = "fraction"
)

// ParseAccuracyScale parses a scale name. The empty string is percent.
func ParseAccuracyScale(s string) (AccuracyScale, error) {
	switch AccuracyScale(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScalePercent:
		return ScalePercent, nil
	case ScaleFraction:
		return ScaleFraction, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccuracyScale, s)
}

// Context is a built calculator configuration: either Generic or Relax.
type Context interface {
	Variant() variant.Variant
	isContext()
}

// Generic carries the generic calculator configuration.
type Generic struct {
	Params perf.GenericContext
}

// Variant implements Context.
func (g Generic) Variant() variant.Variant {
	return variant.Variant{Family: variant.Generic, Mode: g.Params.Mode}
}

func (Generic) isContext() {}

// Relax carries the relax calculator configuration.
type Relax struct {
	Params perf.RelaxContext
}

// Variant implements Context.
func (Relax) Variant() variant.Variant {
	return variant.Variant{Family: variant.Relax, Mode: model.ModeOsu}
}

func (Relax) isContext() {}

// Builder assembles contexts. It holds no per-call state and is safe for
// concurrent use.
type Builder struct {
	scale AccuracyScale
}

// NewBuilder creates a builder reading accuracy as percent unless configured
// otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{scale: ScalePercent}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scale returns the configured accuracy scale.
func (b *Builder) Scale() AccuracyScale { return b.scale }

// Build creates the context for v. Relax contexts receive the tuning values;
// generic contexts never do.
func (b *Builder) Build(v variant.Variant, s model.Score) (Context, error) {
	return b.build(v, s, true)
}

// BuildReduced is Build without tuning values, for callers that cannot
// supply them. The relax family still runs, with default tuning.
func (b *Builder) BuildReduced(v variant.Variant, s model.Score) (Context, error) {
	return b.build(v, s, false)
}

func (b *Builder) build(v variant.Variant, s model.Score, tuning bool) (Context, error) {
	acc, err := b.accuracy(s.Accuracy)
	if err != nil {
		return nil, err
	}

	if v.IsRelax() {
		c := perf.RelaxContext{
			Mods:   s.Mods,
			Combo:  s.MaxCombo,
			Misses: s.MissCount,
		}
		if s.Scope.IsSome() {
			c.Scope = s.Scope
		}
		if tuning {
			c.Tuning = s.Tuning
		}
		// the relax calculator works in single precision
		c.Accuracy = float32(acc)
		return Relax{Params: c}, nil
	}

	if !v.Mode.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidMode, uint32(v.Mode))
	}
	c := perf.GenericContext{
		Mode:   v.Mode,
		Mods:   s.Mods,
		Combo:  s.MaxCombo,
		Misses: s.MissCount,
	}
	if s.Scope.IsSome() {
		c.Scope = s.Scope
	}
	c.Accuracy = acc
	return Generic{Params: c}, nil
}

// accuracy converts raw to percent and checks it is finite and within 0-100.
func (b *Builder) accuracy(raw float64) (float64, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: %v", model.ErrInvalidAccuracy, raw)
	}
	acc := raw
	if b.scale == ScaleFraction {
		acc *= 100
	}
	if acc < 0 || acc > 100 {
		return 0, fmt.Errorf("%w: %v outside [0, 100] (%s)", model.ErrInvalidAccuracy, raw, b.scale)
	}
	return acc, nil
}
