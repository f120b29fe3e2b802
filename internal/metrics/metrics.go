// Package metrics records run statistics as Prometheus metrics and writes
// them to a node_exporter textfile when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trip results used as the "result" label.
const (
	ResultSuccess     = "success"
	ResultEncodeError = "encode_failed"
	ResultIntegrity   = "integrity_failed"
	ResultProbe       = "probe_failed"
	ResultConfig      = "config_error"
	ResultSkipped     = "skipped"
	ResultDryRun      = "dry_run"
)

// Recorder owns a private registry. A nil *Recorder discards everything.
type Recorder struct {
	reg *prometheus.Registry

	trips         *prometheus.CounterVec
	clips         prometheus.Counter
	encodeSeconds *prometheus.HistogramVec
	photos        *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		trips: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripmaster",
			Name:      "trips_total",
			Help:      "Trips processed, by result",
		}, []string{"result"}),
		clips: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tripmaster",
			Name:      "clips_total",
			Help:      "Source clips assigned to trips",
		}),
		encodeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripmaster",
			Subsystem: "ffmpeg",
			Name:      "encode_seconds",
			Help:      "Wall time of each ffmpeg trip invocation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"kind"}),
		photos: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripmaster",
			Name:      "photos_total",
			Help:      "Photos handled, by result",
		}, []string{"result"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tripmaster",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Trip counts one trip with its clip count.
func (r *Recorder) Trip(result string, clips int) {
	if r == nil {
		return
	}
	r.trips.WithLabelValues(result).Inc()
	r.clips.Add(float64(clips))
}

// Encode observes one ffmpeg run of the given plan kind.
func (r *Recorder) Encode(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.encodeSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// Photos counts copied and failed photos.
func (r *Recorder) Photos(copied, failed int) {
	if r == nil {
		return
	}
	r.photos.WithLabelValues(ResultSuccess).Add(float64(copied))
	r.photos.WithLabelValues("failed").Add(float64(failed))
}

// Finish stamps the run end time.
func (r *Recorder) Finish(t time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
