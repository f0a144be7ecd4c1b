package metrics

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the calculator namespace is used", func() {
				So(manager.namespace, ShouldEqual, defaultNamespace)
				So(manager.enabled, ShouldBeTrue)
				manager.calculations.WithLabelValues("generic/osu", "path").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
				So(families[0].GetName(), ShouldStartWith, "refxpp_calculator_")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every option is applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.enabled, ShouldBeFalse)
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
				manager.calculations.WithLabelValues("relax/osu", "bytes").Inc()
				n, err := testutil.GatherAndCount(registry, "test_namespace_test_subsystem_calculations_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults stay in place", func() {
				So(manager.namespace, ShouldEqual, defaultNamespace)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When runtime collectors are requested", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry), WithRuntimeCollectors(true))

			Convey("Then go runtime metrics are exported", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasPrefix(f.GetName(), "go_") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a freshly configured global manager", t, func() {
		Configure(WithNamespace("rec"))
		m := global()

		Convey("When calculations are recorded", func() {
			RecordCalculation("generic/taiko", "path")
			RecordCalculation("generic/taiko", "path")
			RecordCalculationError("invalid_input", "bytes")
			RecordCalculationLatency("path", 3.5)
			RecordBeatmapSize(4096)
			RecordBatchSize(3)

			Convey("Then the counters reflect them", func() {
				So(testutil.ToFloat64(m.calculations.WithLabelValues("generic/taiko", "path")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.calculationErrors.WithLabelValues("invalid_input", "bytes")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.calculationLatency), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.beatmapBytes), ShouldEqual, 1)
			})
		})

		Convey("When HTTP traffic is recorded", func() {
			RecordHTTPRequest("/calculate", "POST", "200")
			RecordHTTPRequestDuration("/calculate", "POST", "200", 12)
			RecordErrorByEndpoint("/calculate", "POST", "invalid_input")

			Convey("Then the registry exposes them", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/calculate", "POST", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("/calculate", "POST", "invalid_input")), ShouldEqual, 1)
				n, err := testutil.GatherAndCount(GetRegistry(), "rec_calculator_http_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When system metrics are sampled", func() {
			runtime.GC()
			SampleSystem()

			Convey("Then the gauges are populated", func() {
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldBeGreaterThan, 0)
				So(m.lastNumGC, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the system sampler runs until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			StartSystemSampler(ctx)
			cancel()

			So(func() { UpdateSystemGoroutineCount(1); RecordSystemGCPauseTime(0.2); UpdateSystemMemoryUsage(1) }, ShouldNotPanic)
		})
	})

	Convey("Given disabled metrics", t, func() {
		Configure(WithMetricsEnabled(false))
		m := global()
		RecordCalculation("generic/osu", "path")

		So(testutil.ToFloat64(m.calculations.WithLabelValues("generic/osu", "path")), ShouldEqual, 0)
		Configure()
	})
}
