package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManager(t *testing.T) {
	Convey("Given a metrics manager on a custom registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegistry(registry), WithNamespace("test"))

		Convey("When recording source requests", func() {
			m.ObserveSourceRequest("search", nil, 10*time.Millisecond)
			m.ObserveSourceRequest("search", errors.New("boom"), 5*time.Millisecond)
			m.ObserveSourceRequest("search", nil, time.Millisecond)

			Convey("Then outcomes are counted separately", func() {
				So(testutil.ToFloat64(m.sourceRequests.WithLabelValues("search", OutcomeSuccess)), ShouldEqual, 2)
				So(testutil.ToFloat64(m.sourceRequests.WithLabelValues("search", OutcomeError)), ShouldEqual, 1)
			})
		})

		Convey("When recording parsed listings", func() {
			m.AddListingsParsed(10, 2)

			Convey("Then both counters advance", func() {
				So(testutil.ToFloat64(m.listingsParsed), ShouldEqual, 10)
				So(testutil.ToFloat64(m.blocksSkipped), ShouldEqual, 2)
			})
		})

		Convey("When recording recommendations and clustering", func() {
			m.ObserveRecommendation(OutcomeSuccess, 12)
			m.ObserveRecommendation(OutcomeEmpty, 0)
			m.ObserveClustering(errors.New("model down"))

			Convey("Then the counters reflect each call", func() {
				So(testutil.ToFloat64(m.recommendations.WithLabelValues(OutcomeSuccess)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.recommendations.WithLabelValues(OutcomeEmpty)), ShouldEqual, 1)
				So(testutil.ToFloat64(m.clusteringRequests.WithLabelValues(OutcomeError)), ShouldEqual, 1)
			})
		})

		Convey("When scraping the handler", func() {
			m.ObserveHTTPRequest("/api/jobs/recommendations", http.MethodGet, http.StatusOK, time.Millisecond)

			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the exposition contains the namespaced series", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(rec.Body.String(), "test_http_requests_total"), ShouldBeTrue)
			})
		})
	})
}

func TestNilManagerIsNoop(t *testing.T) {
	Convey("Given a nil manager", t, func() {
		var m *Manager

		Convey("Then recording does not panic", func() {
			So(func() {
				m.ObserveSourceRequest("search", nil, time.Second)
				m.AddListingsParsed(1, 1)
				m.ObserveRecommendation(OutcomeSuccess, 1)
				m.ObserveClustering(nil)
				m.ObserveHTTPRequest("/", http.MethodGet, 200, time.Second)
			}, ShouldNotPanic)
		})
	})
}
