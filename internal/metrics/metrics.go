package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ResultRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_result_rows_total",
		Help: "Total number of polling-station result rows read (total row excluded)",
	})
	LocationsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "votemap_locations",
		Help: "Number of distinct locations after aggregation",
	})
	DroppedHeadersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votemap_dropped_headers_total",
		Help: "Result headers dropped during classification by reason",
	}, []string{"reason"})
	ReducedPartiesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_reduced_parties_total",
		Help: "Parties whose candidate columns were reduced to their maximum",
	})
	UnmatchedLocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_unmatched_locations_total",
		Help: "Ranked locations without a facility match",
	})
	OverriddenLocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_overridden_locations_total",
		Help: "Locations whose coordinates were replaced by a fixed override",
	})
	GeocodeRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_geocode_requests_total",
		Help: "Total Mapbox forward-geocoding requests",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "votemap_geocode_fail_total",
		Help: "Total Mapbox forward-geocoding failures (error or no feature)",
	})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "votemap_geocode_duration_ms",
		Help:    "Mapbox geocoding call duration in milliseconds",
		Buckets: []float64{10, 20, 50, 100, 200, 500, 1000, 2000},
	})
	StageDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votemap_stage_duration_ms",
		Help:    "Pipeline stage duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(ResultRowsTotal)
	prometheus.MustRegister(LocationsTotal)
	prometheus.MustRegister(DroppedHeadersTotal)
	prometheus.MustRegister(ReducedPartiesTotal)
	prometheus.MustRegister(UnmatchedLocationsTotal)
	prometheus.MustRegister(OverriddenLocationsTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(StageDurationMs)
}

// 文档注释：返回 Prometheus 指标处理器
// 背景：预览服务在 /metrics 暴露本次运行的统计，便于核对丢弃的列与未匹配的地点。
func Handler() http.Handler { return promhttp.Handler() }
