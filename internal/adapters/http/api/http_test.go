package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/refxpp/internal/adapters/http/api"
	service "github.com/okian/refxpp/internal/app"
	"github.com/okian/refxpp/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testdata = filepath.Join("..", "..", "..", "domain", "perf", "testdata")

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(opts ...service.Option) *http.ServeMux {
	svc := service.New(append([]service.Option{service.WithBeatmapDir(testdata)}, opts...)...)
	mux := http.NewServeMux()
	api.NewServer(svc, 1<<20).Register(context.Background(), mux)
	return mux
}

func post(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCalculate(t *testing.T) {
	Convey("Given the API with the fixture directory", t, func() {
		mux := newMux()

		Convey("When posting a valid path request", func() {
			w := post(mux, "/calculate", `{"beatmap_path":"standard.osu","mode":0,"max_combo":72,"accuracy":98.5}`)

			Convey("Then pp and stars are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var res model.Result
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.PP, ShouldBeGreaterThan, 0)
				So(res.Stars, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When posting the same beatmap as base64", func() {
			raw, err := os.ReadFile(filepath.Join(testdata, "standard.osu"))
			So(err, ShouldBeNil)
			encoded := base64.StdEncoding.EncodeToString(raw)

			viaPath := post(mux, "/calculate", `{"beatmap_path":"standard.osu","max_combo":72,"accuracy":98.5,"passed_objects":30}`)
			viaBytes := post(mux, "/calculate", `{"beatmap_base64":"`+encoded+`","max_combo":72,"accuracy":98.5,"passed_objects":30}`)

			Convey("Then both responses are identical", func() {
				So(viaPath.Code, ShouldEqual, http.StatusOK)
				So(viaBytes.Code, ShouldEqual, http.StatusOK)
				So(viaBytes.Body.String(), ShouldEqual, viaPath.Body.String())
			})
		})

		Convey("When relax tuning values are sent on a relax play", func() {
			plain := post(mux, "/calculate", `{"beatmap_path":"standard.osu","mods":128,"max_combo":72,"accuracy":98.5}`)
			tuned := post(mux, "/calculate", `{"beatmap_path":"standard.osu","mods":128,"max_combo":72,"accuracy":98.5,"relax":{"arc":0.5}}`)

			Convey("Then they change the result", func() {
				So(plain.Code, ShouldEqual, http.StatusOK)
				So(tuned.Code, ShouldEqual, http.StatusOK)
				So(tuned.Body.String(), ShouldNotEqual, plain.Body.String())
			})
		})

		Convey("When the mode is 99", func() {
			w := post(mux, "/calculate", `{"beatmap_path":"standard.osu","mode":99,"accuracy":98.5}`)

			Convey("Then an invalid input error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "invalid_input")
				So(body.Message, ShouldContainSubstring, "invalid mode")
			})
		})

		Convey("When the path leaves the beatmap directory", func() {
			w := post(mux, "/calculate", `{"beatmap_path":"../../etc/passwd","accuracy":98.5}`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "invalid_input")
		})

		Convey("When the beatmap cannot be converted", func() {
			w := post(mux, "/calculate", `{"beatmap_path":"taiko.osu","mode":3,"accuracy":98.5}`)

			Convey("Then a computation failure is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, "computation_failed")
			})
		})

		Convey("When the body is malformed", func() {
			for _, body := range []string{
				`{`,
				`{"beatmap_path":"standard.osu"}`,
				`{"beatmap_path":"standard.osu","accuracy":1,"unknown":true}`,
				`{"beatmap_base64":"%%%","accuracy":1}`,
			} {
				w := post(mux, "/calculate", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "bad_request")
			}
		})

		Convey("When accuracy is missing", func() {
			w := post(mux, "/calculate", `{"beatmap_path":"standard.osu","max_combo":72}`)

			Convey("Then the missing field is named", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "accuracy: missing required field")
			})
		})

		Convey("When the body exceeds the limit", func() {
			big := `{"beatmap_base64":"` + strings.Repeat("A", 2<<20) + `","accuracy":1}`
			w := post(mux, "/calculate", big)

			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/calculate", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCalculateBatch(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux(service.WithMaxBatchSize(3))

		Convey("When posting a mixed batch", func() {
			w := post(mux, "/calculate/batch", `[
				{"beatmap_path":"standard.osu","accuracy":99},
				{"beatmap_path":"standard.osu","mode":42,"accuracy":99},
				{"beatmap_path":"standard.osu"}
			]`)

			Convey("Then each item reports its own outcome", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var items []struct {
					Result *model.Result `json:"result"`
					Error  *errorBody    `json:"error"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &items), ShouldBeNil)
				So(items, ShouldHaveLength, 3)
				So(items[0].Result, ShouldNotBeNil)
				So(items[0].Error, ShouldBeNil)
				So(items[1].Error.Code, ShouldEqual, "invalid_input")
				So(items[2].Error.Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When the batch is too large", func() {
			item := `{"beatmap_path":"standard.osu","accuracy":99}`
			w := post(mux, "/calculate/batch", "["+strings.Repeat(item+",", 3)+item+"]")

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "batch exceeds")
		})
	})
}

func TestInventoryAndHealth(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux()
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("When fetching the inventory", func() {
			w := get("/inventory")

			So(w.Code, ShouldEqual, http.StatusOK)
			var inv map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &inv), ShouldBeNil)
			So(inv["library"], ShouldEqual, "refxpp")
		})

		Convey("When fetching the inventory as a C header", func() {
			w := get("/inventory?format=header")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "calculate_score_bytes(")
		})

		Convey("When asking for an unknown inventory format", func() {
			So(get("/inventory?format=toml").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching metrics after a request", func() {
			post(mux, "/calculate", `{"beatmap_path":"standard.osu","accuracy":99}`)
			w := get("/healthz")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("When fetching stats", func() {
			w := get("/stats")

			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&stats), ShouldBeNil)
			So(stats, ShouldContainKey, "served")
		})
	})
}
