package perf

import (
	"fmt"
	"math"

	"github.com/okian/refxpp/internal/domain/model"
)

// CalculateRelax evaluates an osu!standard relax play. Tapping is not
// rewarded; the tuning values shape the aim evaluation.
func CalculateRelax(bm *Beatmap, ctx RelaxContext) (RelaxAttributes, error) {
	if err := bm.convertible(model.ModeOsu); err != nil {
		return RelaxAttributes{}, err
	}
	objects, err := bm.scoped(ctx.Scope)
	if err != nil {
		return RelaxAttributes{}, err
	}

	params := defaultDifficultyParams
	if ctx.Tuning.TapWindow > 0 {
		params.minStrainTime = float64(ctx.Tuning.TapWindow)
	}
	params.aimTopN = int(ctx.Tuning.AimCount)

	d := difficulty(bm, objects, model.ModeOsu, ctx.Mods, params)
	out := RelaxAttributes{
		Difficulty: RelaxDifficulty{
			Stars:        d.Stars,
			AimStrain:    d.Aim,
			SpeedStrain:  d.Speed,
			ApproachRate: d.ApproachRate,
			MaxCombo:     d.MaxCombo,
		},
	}
	if d.Objects == 0 {
		return out, nil
	}

	p := newPlay(ctx.Mods, ctx.Combo, ctx.Misses, float64(ctx.Accuracy), d)
	out.EffectiveMissCount = p.misses

	lb := lengthBonus(d.Objects)
	aim := skillBase(d.Aim, starScaling, 3) * lb
	aim *= math.Pow(0.97, p.misses)
	if ctx.Tuning.ComboScaling {
		aim *= p.comboScale(d.MaxCombo)
	}

	arFactor := 1.0
	if d.ApproachRate > 10.33 {
		arFactor += 0.3 * (d.ApproachRate - 10.33)
	} else if d.ApproachRate < 8 {
		arFactor += 0.01 * (8 - d.ApproachRate)
	}
	arFactor += ctx.Tuning.ARAdjust
	aim *= math.Max(0, arFactor)

	if ctx.Mods.Has(model.ModHidden) {
		if ctx.Tuning.HiddenRework {
			aim *= 1 + 0.04*(12-d.ApproachRate)
		} else {
			aim *= 1.18
		}
	}
	if ctx.Mods.Has(model.ModFlashlight) {
		aim *= 1.45 * lb
	}
	aim *= 0.5 + p.accuracy/2
	aim *= 0.98 + d.OverallDifficulty*d.OverallDifficulty/2500

	acc := osuAccuracyValue(d, p)

	mult := 1.09
	if ctx.Mods.Has(model.ModNoFail) {
		mult *= 0.9
	}
	if ctx.Mods.Has(model.ModSpunOut) {
		mult *= 0.95
	}

	out.Aim, out.Accuracy = aim, acc
	out.PP = math.Pow(math.Pow(aim, 1.185)+math.Pow(acc, 1.185), 1/1.185) * mult

	if !finite(out.PP) || !finite(out.Difficulty.Stars) {
		return RelaxAttributes{}, fmt.Errorf("%w: relax", ErrNonFinite)
	}
	return out, nil
}
