package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))
			manager.analyses.WithLabelValues("full_planche", "passed").Inc()

			Convey("Then metrics should use the default namespace", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "formcheck_analyzer_"), ShouldBeTrue)
				}
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithScoreBuckets([]float64{50, 100}),
				WithPrometheusRegistry(registry),
			)
			manager.queueSize.Set(3)

			Convey("Then the custom names should be registered", func() {
				So(testutil.ToFloat64(manager.queueSize), ShouldEqual, 3)
				n, err := testutil.GatherAndCount(registry, "test_unit_queue_size")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When options carry empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithScoreBuckets([]float64{}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "formcheck")
				So(manager.subsystem, ShouldEqual, "analyzer")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
				So(len(manager.scoreBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestAnalysisMetrics(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When analyses are recorded", func() {
			before := testutil.ToFloat64(globalManager.analyses.WithLabelValues("tuck_planche", "passed"))
			RecordAnalysis("tuck_planche", "passed")
			RecordAnalysis("tuck_planche", "passed")

			Convey("Then the counter should increase per outcome", func() {
				after := testutil.ToFloat64(globalManager.analyses.WithLabelValues("tuck_planche", "passed"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When angle checks and missing landmarks are recorded", func() {
			checks := testutil.ToFloat64(globalManager.angleChecks.WithLabelValues("full_planche", "missing_landmarks"))
			missing := testutil.ToFloat64(globalManager.missingLandmarks.WithLabelValues("LEFT_WRIST"))
			RecordAngleCheck("full_planche", "missing_landmarks")
			RecordMissingLandmark("LEFT_WRIST")

			Convey("Then both counters should move", func() {
				So(testutil.ToFloat64(globalManager.angleChecks.WithLabelValues("full_planche", "missing_landmarks"))-checks, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.missingLandmarks.WithLabelValues("LEFT_WRIST"))-missing, ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.7)
			UpdateJobsStored(42)
			UpdateWorkerCount(4)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.7)
				So(testutil.ToFloat64(globalManager.jobsStored), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			})
		})

		Convey("When workers become busy and idle", func() {
			base := testutil.ToFloat64(globalManager.workerActiveCount)
			AddWorkerActive(1)
			AddWorkerActive(1)
			AddWorkerActive(-1)

			Convey("Then the active gauge should track the difference", func() {
				So(testutil.ToFloat64(globalManager.workerActiveCount)-base, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given every recording function", t, func() {
		Convey("Then none should panic", func() {
			So(func() {
				RecordOverallScore("full_planche", 87.5)
				RecordScoringLatency(12)
				RecordProgressionUnlock()
				RecordElaborationFallback()
				RecordUpstreamLatency("pose", 120)
				RecordUpstreamError("coach", "unavailable")
				RecordDuplicateSubmission()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerProcessingLatency(30)
				RecordWorkerError()
				RecordHTTPRequest("/analyze", "POST", "200")
				RecordHTTPRequestDuration("/analyze", "POST", "200", 150)
				RecordErrorByComponent("queue", "queue_full")
				RecordErrorByType("upstream", "high")
				RecordErrorByEndpoint("/analyze", "POST", "no_pose")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should be exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.queueEnqueueRate)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordQueueEnqueue()
					RecordAngleCheck("planche_lean", "in_range")
				}
			}()
		}
		wg.Wait()

		Convey("Then every increment should be counted", func() {
			So(testutil.ToFloat64(globalManager.queueEnqueueRate)-before, ShouldEqual, 1000)
		})
	})
}
