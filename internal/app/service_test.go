package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	service "github.com/okian/refxpp/internal/app"
	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/perf"
	"github.com/okian/refxpp/internal/domain/scoring"
	"github.com/okian/refxpp/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var testdata = filepath.Join("..", "domain", "perf", "testdata")

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func score() model.Score {
	return model.Score{Mode: 0, MaxCombo: 72, Accuracy: 99}
}

func TestService_Calculate(t *testing.T) {
	Convey("Given a service restricted to the fixture directory", t, func() {
		svc := service.New(
			service.WithLogger(logger.Get()),
			service.WithBeatmapDir(testdata),
		)
		ctx := context.Background()

		Convey("When calculating a relative path", func() {
			res, err := svc.Calculate(ctx, service.Request{BeatmapPath: "standard.osu", Score: score()})

			Convey("Then it matches the boundary result", func() {
				So(err, ShouldBeNil)
				want, err := boundary.CalculateScore(boundary.PathRequest{
					Path:  filepath.Join(testdata, "standard.osu"),
					Score: score(),
				})
				So(err, ShouldBeNil)
				So(res, ShouldResemble, want)
				So(svc.Stats()["served"], ShouldEqual, int64(1))
			})
		})

		Convey("When the path escapes the directory", func() {
			for _, p := range []string{"../perf/testdata/standard.osu", "/etc/passwd"} {
				_, err := svc.Calculate(ctx, service.Request{BeatmapPath: p, Score: score()})
				So(errors.Is(err, service.ErrPathOutsideDir), ShouldBeTrue)
				So(service.IsInputError(err), ShouldBeTrue)
			}
		})

		Convey("When both or neither beatmap sources are given", func() {
			_, err1 := svc.Calculate(ctx, service.Request{Score: score()})
			_, err2 := svc.Calculate(ctx, service.Request{BeatmapPath: "standard.osu", Beatmap: []byte("x"), Score: score()})

			So(errors.Is(err1, service.ErrNoBeatmap), ShouldBeTrue)
			So(errors.Is(err2, service.ErrNoBeatmap), ShouldBeTrue)
		})

		Convey("When the mode is unknown", func() {
			s := score()
			s.Mode = 99
			_, err := svc.Calculate(ctx, service.Request{BeatmapPath: "standard.osu", Score: s})

			So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
			So(svc.Stats()["failed"], ShouldEqual, int64(1))
		})
	})

	Convey("Given a service without a beatmap directory", t, func() {
		svc := service.New()
		raw, err := os.ReadFile(filepath.Join(testdata, "standard.osu"))
		So(err, ShouldBeNil)

		Convey("Then path requests are rejected", func() {
			_, err := svc.Calculate(context.Background(), service.Request{BeatmapPath: "standard.osu", Score: score()})
			So(errors.Is(err, service.ErrPathsDisabled), ShouldBeTrue)
		})

		Convey("Then byte requests still work", func() {
			res, err := svc.Calculate(context.Background(), service.Request{Beatmap: raw, Score: score()})
			So(err, ShouldBeNil)
			So(res.PP, ShouldBeGreaterThan, 0)
		})

		Convey("Then oversized beatmaps are rejected", func() {
			small := service.New(service.WithMaxBeatmapBytes(64))
			_, err := small.Calculate(context.Background(), service.Request{Beatmap: raw, Score: score()})
			So(errors.Is(err, service.ErrBeatmapTooLarge), ShouldBeTrue)
		})
	})

	Convey("Given a fraction accuracy service with unrestricted paths", t, func() {
		svc := service.New(
			service.WithUnrestrictedPaths(),
			service.WithAccuracyScale(scoring.ScaleFraction),
		)
		s := score()
		s.Accuracy = 0.99

		res, err := svc.Calculate(context.Background(), service.Request{BeatmapPath: filepath.Join(testdata, "standard.osu"), Score: s})

		So(err, ShouldBeNil)
		want, _ := boundary.CalculateScore(boundary.PathRequest{Path: filepath.Join(testdata, "standard.osu"), Score: score()})
		So(res.PP, ShouldAlmostEqual, want.PP, 1e-9)
	})
}

func TestService_CalculateBatch(t *testing.T) {
	Convey("Given a batch of mixed requests", t, func() {
		svc := service.New(service.WithBeatmapDir(testdata), service.WithBatchConcurrency(2), service.WithMaxBatchSize(5))
		bad := score()
		bad.Mode = 7
		reqs := []service.Request{
			{BeatmapPath: "standard.osu", Score: score()},
			{BeatmapPath: "missing.osu", Score: score()},
			{BeatmapPath: "standard.osu", Score: bad},
			{BeatmapPath: "taiko.osu", Score: model.Score{Mode: 1, MaxCombo: 40, Accuracy: 95}},
		}

		Convey("When calculated", func() {
			out, err := svc.CalculateBatch(context.Background(), reqs)

			Convey("Then every item has its own outcome in order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 4)
				So(out[0].Err, ShouldBeNil)
				So(out[0].Result.PP, ShouldBeGreaterThan, 0)
				So(errors.Is(out[1].Err, perf.ErrReadBeatmap), ShouldBeTrue)
				So(errors.Is(out[2].Err, model.ErrInvalidMode), ShouldBeTrue)
				So(out[3].Err, ShouldBeNil)
			})
		})

		Convey("When the batch is too large", func() {
			_, err := svc.CalculateBatch(context.Background(), append(reqs, reqs...))

			So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := svc.CalculateBatch(ctx, reqs)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))
		defer svc.Stop()

		So(svc.Start(context.Background()), ShouldBeNil)
		So(svc.Start(context.Background()), ShouldBeNil)
		So(svc.Stats()["started"], ShouldBeTrue)

		svc.Stop()
		So(svc.Stats()["started"], ShouldBeFalse)
	})
}
