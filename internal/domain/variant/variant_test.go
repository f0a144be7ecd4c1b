package variant_test

import (
	"errors"
	"testing"

	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/variant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelect(t *testing.T) {
	Convey("Given the variant selector", t, func() {
		Convey("When the mods lack the relax bit", func() {
			mods := model.ModHidden | model.ModDoubleTime

			Convey("Then every known mode resolves to the generic family", func() {
				for raw := uint32(0); raw <= 3; raw++ {
					v, err := variant.Select(raw, mods)
					So(err, ShouldBeNil)
					So(v.Family, ShouldEqual, variant.Generic)
					So(v.Mode, ShouldEqual, model.Mode(raw))
				}
			})
		})

		Convey("When osu!standard is played with relax", func() {
			v, err := variant.Select(0, model.ModRelax|model.ModHidden)

			Convey("Then the relax family is selected", func() {
				So(err, ShouldBeNil)
				So(v.IsRelax(), ShouldBeTrue)
				So(v.String(), ShouldEqual, "relax/osu")
			})
		})

		Convey("When another mode carries the relax bit", func() {
			for raw := uint32(1); raw <= 3; raw++ {
				v, err := variant.Select(raw, model.ModRelax)
				So(err, ShouldBeNil)
				So(v.Family, ShouldEqual, variant.Generic)
			}
		})

		Convey("When the mode is out of range", func() {
			for _, mods := range []model.Mods{0, model.ModRelax} {
				_, err := variant.Select(99, mods)

				So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
			}
		})
	})
}
