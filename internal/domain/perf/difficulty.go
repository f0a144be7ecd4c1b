package perf

import (
	"math"

	"github.com/okian/refxpp/internal/domain/model"
)

const (
	minStrainTime   = 25.0
	starScaling     = 0.0675
	catchStarScale  = 0.153
	taikoStarScale  = 0.01
	maniaStarScale  = 0.005
	normRadius      = 52.0
	speedBonusLimit = 125.0
)

// difficultyParams tweak the skill evaluation for the relax calculator.
type difficultyParams struct {
	minStrainTime float64
	aimTopN       int
}

var defaultDifficultyParams = difficultyParams{minStrainTime: minStrainTime}

// difficulty rates objects as mode under mods.
func difficulty(bm *Beatmap, objects []HitObject, mode model.Mode, mods model.Mods, p difficultyParams) DifficultyAttributes {
	mc := bm.constants(mods)
	attrs := DifficultyAttributes{
		Mode:              mode,
		ApproachRate:      mc.ar,
		OverallDifficulty: mc.od,
		HitWindow:         mc.window300,
		MaxCombo:          maxCombo(objects, mode),
		Objects:           len(objects),
	}
	for _, o := range objects {
		switch o.Kind {
		case KindCircle, KindHold:
			attrs.Circles++
		case KindSlider:
			attrs.Sliders++
		case KindSpinner:
			attrs.Spinners++
		}
	}
	if len(objects) < 2 {
		return attrs
	}

	switch mode {
	case model.ModeOsu:
		aim, speed := osuSkills(objects, mc, p)
		attrs.Aim = math.Sqrt(aim) * starScaling
		attrs.Speed = math.Sqrt(speed) * starScaling
		attrs.Stars = attrs.Aim + attrs.Speed + math.Abs(attrs.Aim-attrs.Speed)/2
	case model.ModeTaiko:
		attrs.Strain = densitySkill(objects, mc, 1, 0.3) * taikoStarScale
		attrs.Stars = attrs.Strain
	case model.ModeCatch:
		attrs.Strain = math.Sqrt(catchSkill(objects, mc)) * catchStarScale
		attrs.Stars = attrs.Strain
	case model.ModeMania:
		attrs.Strain = maniaSkill(objects, mc) * maniaStarScale
		attrs.Stars = attrs.Strain
	}
	return attrs
}

func osuSkills(objects []HitObject, mc mapConstants, p difficultyParams) (float64, float64) {
	aim := newStrainSkill(26.25, 0.15)
	aim.topN = p.aimTopN
	speed := newStrainSkill(1400, 0.3)
	scale := normRadius / mc.circleRadius

	for i := 1; i < len(objects); i++ {
		prev, cur := objects[i-1], objects[i]
		t := cur.Time / mc.clockRate
		delta := (cur.Time - prev.Time) / mc.clockRate
		strainTime := math.Max(delta, p.minStrainTime)

		dist := 0.0
		if cur.Kind != KindSpinner && prev.Kind != KindSpinner {
			dist = math.Hypot(cur.X-prev.X, cur.Y-prev.Y) * scale
		}

		aim.process(t, delta, math.Pow(dist, 0.99)/strainTime)
		speedBonus := 0.95 + 0.5*math.Min(1, dist/speedBonusLimit)
		speed.process(t, delta, speedBonus/strainTime)
	}
	return aim.difficulty(), speed.difficulty()
}

func densitySkill(objects []HitObject, mc mapConstants, multiplier, decay float64) float64 {
	s := newStrainSkill(multiplier, decay)
	for i := 1; i < len(objects); i++ {
		t := objects[i].Time / mc.clockRate
		delta := (objects[i].Time - objects[i-1].Time) / mc.clockRate
		s.process(t, delta, 1000/math.Max(delta, minStrainTime))
	}
	return s.difficulty()
}

func catchSkill(objects []HitObject, mc mapConstants) float64 {
	s := newStrainSkill(1, 0.2)
	catcherWidth := 106.75 * (mc.circleRadius / 54.4)
	for i := 1; i < len(objects); i++ {
		t := objects[i].Time / mc.clockRate
		delta := (objects[i].Time - objects[i-1].Time) / mc.clockRate
		move := math.Abs(objects[i].X-objects[i-1].X) / catcherWidth
		s.process(t, delta, (move+0.5)*1000/math.Max(delta, minStrainTime))
	}
	return s.difficulty()
}

// maniaSkill groups simultaneous notes into chords.
func maniaSkill(objects []HitObject, mc mapConstants) float64 {
	s := newStrainSkill(1, 0.3)
	chord := 1
	lastTime := objects[0].Time
	for i := 1; i < len(objects); i++ {
		if objects[i].Time == lastTime {
			chord++
			continue
		}
		t := objects[i].Time / mc.clockRate
		delta := (objects[i].Time - lastTime) / mc.clockRate
		s.process(t, delta, float64(chord)*1000/math.Max(delta, minStrainTime))
		chord = 1
		lastTime = objects[i].Time
	}
	return s.difficulty()
}
