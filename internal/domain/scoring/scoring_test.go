package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/refxpp/internal/domain/model"
	scoring "github.com/okian/refxpp/internal/domain/scoring"
	"github.com/okian/refxpp/internal/domain/variant"
	. "github.com/smartystreets/goconvey/convey"
)

var tuned = model.RelaxTuning{
	AimCount:     7,
	ARAdjust:     0.25,
	HiddenRework: true,
	TapWindow:    60,
	ComboScaling: true,
}

func TestBuild(t *testing.T) {
	Convey("Given a percent builder", t, func() {
		b := scoring.NewBuilder()
		score := model.Score{
			Mods:      model.ModHidden,
			MaxCombo:  500,
			MissCount: 3,
			Accuracy:  97.123456789,
			Tuning:    tuned,
		}

		Convey("When the generic family is selected", func() {
			v, err := variant.Select(2, score.Mods)
			So(err, ShouldBeNil)
			ctx, err := b.Build(v, score)
			So(err, ShouldBeNil)

			Convey("Then the counts and full precision accuracy are carried", func() {
				g, ok := ctx.(scoring.Generic)
				So(ok, ShouldBeTrue)
				So(g.Params.Mode, ShouldEqual, model.ModeCatch)
				So(g.Params.Mods, ShouldEqual, model.ModHidden)
				So(g.Params.Combo, ShouldEqual, 500)
				So(g.Params.Misses, ShouldEqual, 3)
				So(g.Params.Accuracy, ShouldEqual, 97.123456789)
				So(g.Params.Scope.IsSome(), ShouldBeFalse)
				So(ctx.Variant(), ShouldResemble, v)
			})
		})

		Convey("When the relax family is selected", func() {
			score.Mods |= model.ModRelax
			score.Scope = model.Some(120)
			v, err := variant.Select(0, score.Mods)
			So(err, ShouldBeNil)
			ctx, err := b.Build(v, score)
			So(err, ShouldBeNil)

			Convey("Then tuning values are applied and accuracy is narrowed", func() {
				r, ok := ctx.(scoring.Relax)
				So(ok, ShouldBeTrue)
				So(r.Params.Tuning, ShouldResemble, tuned)
				So(r.Params.Accuracy, ShouldEqual, float32(97.123456789))
				So(float64(r.Params.Accuracy), ShouldNotEqual, 97.123456789)
				So(r.Params.Scope, ShouldResemble, model.Some(120))
				So(ctx.Variant().IsRelax(), ShouldBeTrue)
			})

			Convey("Then the reduced build drops the tuning values", func() {
				ctx, err := b.BuildReduced(v, score)
				So(err, ShouldBeNil)
				r := ctx.(scoring.Relax)
				So(r.Params.Tuning, ShouldResemble, model.RelaxTuning{})
				So(r.Params.Combo, ShouldEqual, 500)
			})
		})

		Convey("When accuracy is out of range or not finite", func() {
			v := variant.Variant{Family: variant.Generic, Mode: model.ModeOsu}
			for _, acc := range []float64{-0.01, 100.0001, math.NaN(), math.Inf(1), math.Inf(-1)} {
				score.Accuracy = acc
				_, err := b.Build(v, score)
				So(errors.Is(err, model.ErrInvalidAccuracy), ShouldBeTrue)
			}
		})

		Convey("When the accuracy is exactly on the bounds", func() {
			v := variant.Variant{Family: variant.Generic, Mode: model.ModeOsu}
			for _, acc := range []float64{0, 100} {
				score.Accuracy = acc
				_, err := b.Build(v, score)
				So(err, ShouldBeNil)
			}
		})

		Convey("When the variant carries an unknown mode", func() {
			_, err := b.Build(variant.Variant{Mode: model.Mode(9)}, score)

			So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
		})
	})

	Convey("Given a fraction builder", t, func() {
		b := scoring.NewBuilder(scoring.WithAccuracyScale(scoring.ScaleFraction))
		v := variant.Variant{Family: variant.Generic, Mode: model.ModeTaiko}

		Convey("Then accuracy is converted to percent", func() {
			ctx, err := b.Build(v, model.Score{Accuracy: 0.985})
			So(err, ShouldBeNil)
			So(ctx.(scoring.Generic).Params.Accuracy, ShouldAlmostEqual, 98.5, 1e-9)
			So(b.Scale(), ShouldEqual, scoring.ScaleFraction)
		})

		Convey("Then a percent value is rejected", func() {
			_, err := b.Build(v, model.Score{Accuracy: 98.5})
			So(errors.Is(err, model.ErrInvalidAccuracy), ShouldBeTrue)
		})
	})
}

func TestTuningInertForGeneric(t *testing.T) {
	Convey("Given two scores differing only in tuning values", t, func() {
		b := scoring.NewBuilder()
		a := model.Score{Mode: 1, MaxCombo: 100, Accuracy: 95}
		c := a
		c.Tuning = tuned

		for _, mode := range []uint32{0, 1, 2, 3} {
			v, err := variant.Select(mode, 0)
			So(err, ShouldBeNil)
			x, err1 := b.Build(v, a)
			y, err2 := b.Build(v, c)

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(x, ShouldResemble, y)
		}
	})
}

func TestParseAccuracyScale(t *testing.T) {
	Convey("Given scale names", t, func() {
		for in, want := range map[string]scoring.AccuracyScale{
			"":          scoring.ScalePercent,
			"percent":   scoring.ScalePercent,
			" Fraction": scoring.ScaleFraction,
		} {
			got, err := scoring.ParseAccuracyScale(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := scoring.ParseAccuracyScale("ratio")
		So(errors.Is(err, scoring.ErrUnknownAccuracyScale), ShouldBeTrue)

		Convey("And an invalid option leaves the default in place", func() {
			b := scoring.NewBuilder(scoring.WithAccuracyScale("ratio"))
			So(b.Scale(), ShouldEqual, scoring.ScalePercent)
		})
	})
}
