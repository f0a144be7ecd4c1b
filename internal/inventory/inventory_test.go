package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestBuild(t *testing.T) {
	Convey("Given the built inventory", t, func() {
		inv := Build()

		Convey("Then the result layout is pp then stars", func() {
			res := inv.Types[0]
			So(res.Name, ShouldEqual, "CalculatePerformanceResult")
			So(res.Size, ShouldEqual, uintptr(16))
			So(res.Fields[0].Name, ShouldEqual, "pp")
			So(res.Fields[0].Offset, ShouldEqual, uintptr(0))
			So(res.Fields[1].Name, ShouldEqual, "stars")
			So(res.Fields[1].Offset, ShouldEqual, uintptr(8))
		})

		Convey("Then the option layout puts the payload after the flag", func() {
			opt := inv.Types[1]
			So(opt.Size, ShouldEqual, uintptr(8))
			So(opt.Fields[1].Offset, ShouldEqual, uintptr(4))
		})

		Convey("Then passed_objects documents the flag first layout", func() {
			for _, fn := range inv.Functions {
				var doc string
				for _, p := range fn.Params {
					if p.Name == "passed_objects" {
						doc = p.Doc
					}
				}
				So(doc, ShouldContainSubstring, "has_value (u8) precedes value")
				So(doc, ShouldContainSubstring, "FFIOption<u32>")
			}
		})

		Convey("Then both entry points are registered with ordered parameters", func() {
			So(inv.Functions, ShouldHaveLength, 2)
			path, data := inv.Functions[0], inv.Functions[1]
			So(path.Name, ShouldEqual, "calculate_score")
			So(path.Params, ShouldHaveLength, 15)
			So(path.Params[0].Name, ShouldEqual, "beatmap_path")
			So(path.Params[7].Name, ShouldEqual, "ac")
			So(path.Params[11].Name, ShouldEqual, "cs")
			So(data.Name, ShouldEqual, "calculate_score_bytes")
			So(data.Params, ShouldHaveLength, 11)
			for _, p := range data.Params {
				So(p.Name, ShouldNotEqual, "ac")
			}
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given the inventory", t, func() {
		inv := Build()
		var buf bytes.Buffer

		Convey("When written as JSON", func() {
			So(Write(&buf, inv, FormatJSON), ShouldBeNil)

			Convey("Then it decodes back to the same value", func() {
				var got Inventory
				So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
				So(got, ShouldResemble, inv)
			})
		})

		Convey("When written as YAML", func() {
			So(Write(&buf, inv, FormatYAML), ShouldBeNil)

			Convey("Then it names the library and functions", func() {
				var got map[string]any
				So(yaml.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
				So(got["library"], ShouldEqual, LibraryName)
				So(buf.String(), ShouldContainSubstring, "calculate_score_bytes")
			})
		})

		Convey("When written as a C header", func() {
			So(Write(&buf, inv, FormatHeader), ShouldBeNil)
			out := buf.String()

			Convey("Then it declares the types and prototypes", func() {
				So(out, ShouldContainSubstring, "#ifndef REFXPP_H")
				So(out, ShouldContainSubstring, "double pp; /* offset 0 */")
				So(out, ShouldContainSubstring, "} CalculatePerformanceResult; /* size 16 */")
				So(out, ShouldContainSubstring, "#define REFXPP_STATUS_INVALID_INPUT 1")
				So(out, ShouldContainSubstring, "int32_t calculate_score(const char* beatmap_path, uint32_t mode")
				So(out, ShouldContainSubstring, "const uint8_t* beatmap_bytes, uint32_t len")
			})
		})

		Convey("When the format is unknown", func() {
			err := Write(&buf, inv, "toml")
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})
	})
}
