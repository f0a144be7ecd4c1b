// Package perf is the performance model: it loads beatmaps and turns a
// configured scoring context into difficulty and performance attributes.
package perf

import (
	"fmt"
	"math"

	"github.com/okian/refxpp/internal/domain/model"
)

// ObjectKind classifies a hit object.
type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
	KindHold
)

// HitObject is a single chart object in playfield coordinates.
type HitObject struct {
	X, Y    float64
	Time    float64
	EndTime float64
	Kind    ObjectKind
	// Slides is the number of slider spans; 1 for a slider without repeats.
	Slides int
	// Length is the slider path length in osu!pixels.
	Length float64
	// Ticks is the number of slider ticks per span.
	Ticks int
}

// TimingPoint is a [TimingPoints] entry.
type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Uninherited bool
}

// Beatmap is a parsed chart. It owns all of its data; nothing refers back to
// the buffer it was parsed from.
type Beatmap struct {
	Version int
	Mode    model.Mode

	HPDrainRate       float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderMultiplier  float64
	SliderTickRate    float64

	TimingPoints []TimingPoint
	Objects      []HitObject
}

// ObjectCount is the number of hit objects.
func (b *Beatmap) ObjectCount() int { return len(b.Objects) }

// scoped returns the first n objects when the scope is present. A scope
// larger than the object count is rejected.
func (b *Beatmap) scoped(scope model.Scope) ([]HitObject, error) {
	n, ok := scope.Get()
	if !ok {
		return b.Objects, nil
	}
	if int64(n) > int64(len(b.Objects)) {
		return nil, fmt.Errorf("%w: %d > %d", ErrScopeExceedsObjects, n, len(b.Objects))
	}
	return b.Objects[:n], nil
}

// convertible reports whether the beatmap can be played as mode. Only
// osu!standard charts convert to the other modes.
func (b *Beatmap) convertible(mode model.Mode) error {
	if b.Mode == mode || b.Mode == model.ModeOsu {
		return nil
	}
	return fmt.Errorf("%w: %s beatmap as %s", ErrConversion, b.Mode, mode)
}

// maxCombo counts the combo a full-combo play of objects reaches in mode.
func maxCombo(objects []HitObject, mode model.Mode) int {
	combo := 0
	for _, o := range objects {
		switch o.Kind {
		case KindCircle, KindHold:
			combo++
		case KindSlider:
			switch mode {
			case model.ModeTaiko:
				// drumrolls do not count towards combo
			case model.ModeMania:
				combo++
			default:
				combo += 1 + o.Slides + o.Ticks*o.Slides
			}
		case KindSpinner:
			if mode == model.ModeOsu {
				combo++
			}
		}
	}
	return combo
}

// mapConstants are the mod adjusted beatmap settings.
type mapConstants struct {
	clockRate    float64
	circleRadius float64
	ar           float64
	od           float64
	preempt      float64
	window300    float64
}

func (b *Beatmap) constants(mods model.Mods) mapConstants {
	cs, ar, od := b.CircleSize, b.ApproachRate, b.OverallDifficulty
	if mods.Has(model.ModHardRock) {
		cs = math.Min(cs*1.3, 10)
		ar = math.Min(ar*1.4, 10)
		od = math.Min(od*1.4, 10)
	}
	if mods.Has(model.ModEasy) {
		cs /= 2
		ar /= 2
		od /= 2
	}

	rate := mods.ClockRate()
	preempt := arToPreempt(ar) / rate
	window300 := (80 - 6*od) / rate

	return mapConstants{
		clockRate:    rate,
		circleRadius: 54.4 - 4.48*cs,
		ar:           preemptToAR(preempt),
		od:           (80 - window300) / 6,
		preempt:      preempt,
		window300:    window300,
	}
}

func arToPreempt(ar float64) float64 {
	if ar > 5 {
		return 1200 - 150*(ar-5)
	}
	return 1800 - 120*ar
}

func preemptToAR(preempt float64) float64 {
	if preempt < 1200 {
		return 5 + (1200-preempt)/150
	}
	return (1800 - preempt) / 120
}
