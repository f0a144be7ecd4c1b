package perf

import "github.com/okian/refxpp/internal/domain/model"

// DifficultyAttributes are the intermediate values the generic calculator
// derives from the chart before scoring the play.
type DifficultyAttributes struct {
	Mode  model.Mode
	Stars float64

	// Aim and Speed are osu!standard skill ratings.
	Aim   float64
	Speed float64
	// Strain is the single skill rating of taiko, catch and mania.
	Strain float64

	ApproachRate      float64
	OverallDifficulty float64
	HitWindow         float64

	MaxCombo int
	Objects  int
	Circles  int
	Sliders  int
	Spinners int
}

// GenericAttributes is the result of the generic calculator.
type GenericAttributes struct {
	Difficulty DifficultyAttributes

	PPAim      float64
	PPSpeed    float64
	PPAccuracy float64
	PPStrain   float64
	PPTotal    float64
}

// PP returns the total performance value.
func (a GenericAttributes) PP() float64 { return a.PPTotal }

// Stars returns the star rating.
func (a GenericAttributes) Stars() float64 { return a.Difficulty.Stars }

// RelaxDifficulty is the difficulty part of a relax result.
type RelaxDifficulty struct {
	Stars        float64
	AimStrain    float64
	SpeedStrain  float64
	ApproachRate float64
	MaxCombo     int
}

// RelaxAttributes is the result of the relax calculator.
type RelaxAttributes struct {
	Difficulty RelaxDifficulty

	PP                 float64
	Aim                float64
	Accuracy           float64
	EffectiveMissCount float64
}
