package perf

import (
	"fmt"
	"math"

	"github.com/okian/refxpp/internal/domain/model"
)

// play holds the score statistics shared by the per-mode formulas.
type play struct {
	mods     model.Mods
	combo    float64
	misses   float64
	accuracy float64 // 0-1
}

func newPlay(mods model.Mods, combo, misses uint32, accuracyPercent float64, attrs DifficultyAttributes) play {
	p := play{
		mods:     mods,
		combo:    math.Min(float64(combo), float64(attrs.MaxCombo)),
		misses:   math.Min(float64(misses), float64(attrs.Objects)),
		accuracy: math.Max(0, math.Min(1, accuracyPercent/100)),
	}
	return p
}

func (p play) comboScale(maxCombo int) float64 {
	if maxCombo <= 0 {
		return 1
	}
	return math.Min(math.Pow(p.combo, 0.8)/math.Pow(float64(maxCombo), 0.8), 1)
}

// CalculateGeneric evaluates a play with the generic calculator.
func CalculateGeneric(bm *Beatmap, ctx GenericContext) (GenericAttributes, error) {
	if err := bm.convertible(ctx.Mode); err != nil {
		return GenericAttributes{}, err
	}
	objects, err := bm.scoped(ctx.Scope)
	if err != nil {
		return GenericAttributes{}, err
	}

	attrs := GenericAttributes{
		Difficulty: difficulty(bm, objects, ctx.Mode, ctx.Mods, defaultDifficultyParams),
	}
	p := newPlay(ctx.Mods, ctx.Combo, ctx.Misses, ctx.Accuracy, attrs.Difficulty)

	switch ctx.Mode {
	case model.ModeOsu:
		osuPP(&attrs, p)
	case model.ModeTaiko:
		taikoPP(&attrs, p)
	case model.ModeCatch:
		catchPP(&attrs, p)
	case model.ModeMania:
		maniaPP(&attrs, p)
	}

	if !finite(attrs.PPTotal) || !finite(attrs.Difficulty.Stars) {
		return GenericAttributes{}, fmt.Errorf("%w: %s", ErrNonFinite, ctx.Mode)
	}
	return attrs, nil
}

func lengthBonus(objects int) float64 {
	n := float64(objects)
	b := 0.95 + 0.4*math.Min(1, n/2000)
	if n > 2000 {
		b += math.Log10(n/2000) * 0.5
	}
	return b
}

func skillBase(rating, divisor float64, exp float64) float64 {
	return math.Pow(5*math.Max(1, rating/divisor)-4, exp) / 100000
}

func osuPP(a *GenericAttributes, p play) {
	d := a.Difficulty
	if d.Objects == 0 {
		return
	}
	lb := lengthBonus(d.Objects)
	missPenalty := math.Pow(0.97, p.misses)
	combo := p.comboScale(d.MaxCombo)

	arFactor := 1.0
	if d.ApproachRate > 10.33 {
		arFactor += 0.3 * (d.ApproachRate - 10.33)
	} else if d.ApproachRate < 8 {
		arFactor += 0.01 * (8 - d.ApproachRate)
	}

	aim := skillBase(d.Aim, starScaling, 3) * lb * missPenalty * combo * arFactor
	if p.mods.Has(model.ModHidden) {
		aim *= 1 + 0.04*(12-d.ApproachRate)
	}
	if p.mods.Has(model.ModFlashlight) {
		aim *= 1.45 * lb
	}
	aim *= 0.5 + p.accuracy/2
	aim *= 0.98 + d.OverallDifficulty*d.OverallDifficulty/2500

	speed := skillBase(d.Speed, starScaling, 3) * lb * missPenalty * combo
	if d.ApproachRate > 10.33 {
		speed *= arFactor
	}
	if p.mods.Has(model.ModHidden) {
		speed *= 1 + 0.04*(12-d.ApproachRate)
	}
	speed *= 0.02 + p.accuracy
	speed *= 0.96 + d.OverallDifficulty*d.OverallDifficulty/1600

	acc := osuAccuracyValue(d, p)

	mult := 1.12
	if p.mods.Has(model.ModNoFail) {
		mult *= 0.9
	}
	if p.mods.Has(model.ModSpunOut) {
		mult *= 0.95
	}

	a.PPAim, a.PPSpeed, a.PPAccuracy = aim, speed, acc
	a.PPTotal = math.Pow(math.Pow(aim, 1.1)+math.Pow(speed, 1.1)+math.Pow(acc, 1.1), 1/1.1) * mult
}

func osuAccuracyValue(d DifficultyAttributes, p play) float64 {
	circles := math.Max(1, float64(d.Circles))
	acc := math.Pow(1.52163, d.OverallDifficulty) * math.Pow(p.accuracy, 24) * 2.83
	acc *= math.Min(1.15, math.Pow(circles/1000, 0.3))
	if p.mods.Has(model.ModHidden) {
		acc *= 1.08
	}
	if p.mods.Has(model.ModFlashlight) {
		acc *= 1.02
	}
	return acc
}

func taikoPP(a *GenericAttributes, p play) {
	d := a.Difficulty
	if d.Objects == 0 {
		return
	}
	n := float64(d.MaxCombo)
	strain := skillBase(d.Strain, 0.0075, 2)
	strain *= 1 + 0.1*math.Min(1, n/1500)
	strain *= math.Pow(0.985, p.misses)
	if p.mods.Has(model.ModHidden) {
		strain *= 1.025
	}
	if p.mods.Has(model.ModFlashlight) {
		strain *= 1.05 * (1 + 0.1*math.Min(1, n/1500))
	}
	strain *= p.accuracy

	window := math.Max(1, 50-3*d.OverallDifficulty)
	acc := math.Pow(150/window, 1.1) * math.Pow(p.accuracy, 15) * 22
	acc *= math.Min(1.15, math.Pow(n/1500, 0.3))

	mult := 1.1
	if p.mods.Has(model.ModNoFail) {
		mult *= 0.9
	}
	if p.mods.Has(model.ModHidden) {
		mult *= 1.1
	}

	a.PPStrain, a.PPAccuracy = strain, acc
	a.PPTotal = math.Pow(math.Pow(strain, 1.1)+math.Pow(acc, 1.1), 1/1.1) * mult
}

func catchPP(a *GenericAttributes, p play) {
	d := a.Difficulty
	if d.Objects == 0 {
		return
	}
	combo := float64(d.MaxCombo)
	v := skillBase(d.Strain, 0.0049, 2)

	lb := 0.95 + 0.3*math.Min(1, combo/2500)
	if combo > 2500 {
		lb += math.Log10(combo/2500) * 0.475
	}
	v *= lb
	v *= math.Pow(0.97, p.misses)
	v *= p.comboScale(d.MaxCombo)

	arFactor := 1.0
	if d.ApproachRate > 9 {
		arFactor += 0.1 * (d.ApproachRate - 9)
	} else if d.ApproachRate < 8 {
		arFactor += 0.025 * (8 - d.ApproachRate)
	}
	v *= arFactor
	if p.mods.Has(model.ModHidden) {
		v *= 1.05 + 0.075*(10-math.Min(10, d.ApproachRate))
	}
	if p.mods.Has(model.ModFlashlight) {
		v *= 1.35 * lb
	}
	v *= math.Pow(p.accuracy, 5.5)
	if p.mods.Has(model.ModNoFail) {
		v *= 0.9
	}

	a.PPStrain = v
	a.PPTotal = v
}

func maniaPP(a *GenericAttributes, p play) {
	d := a.Difficulty
	if d.Objects == 0 {
		return
	}
	strain := 8 * math.Pow(math.Max(d.Strain-0.15, 0.05), 2.2)
	strain *= math.Max(0, 5*p.accuracy-4)
	strain *= 1 + 0.1*math.Min(1, float64(d.Objects)/1500)

	mult := 0.8
	if p.mods.Has(model.ModNoFail) {
		mult *= 0.75
	}
	if p.mods.Has(model.ModEasy) {
		mult *= 0.5
	}

	a.PPStrain = strain
	a.PPTotal = strain * mult
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
