package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/protodoc/pkg/docs"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Rendering metrics
	FilesTotal         *prometheus.CounterVec
	ValidationWarnings prometheus.Counter
	RenderErrorsTotal  *prometheus.CounterVec
	RenderDuration     prometheus.Histogram

	// Registry metrics
	ExtensionsLoaded *prometheus.GaugeVec
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protodoc_files_total",
				Help: "Total number of proto files processed",
			},
			[]string{"outcome"},
		),
		ValidationWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protodoc_validation_warnings_total",
				Help: "Total number of rendered blocks that failed RST validation",
			},
		),
		RenderErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protodoc_render_errors_total",
				Help: "Total number of fatal rendering errors",
			},
			[]string{"kind"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "protodoc_render_duration_seconds",
				Help:    "Duration of a full render run in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		ExtensionsLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "protodoc_extensions_loaded",
				Help: "Number of extensions known to the registries",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		m.FilesTotal,
		m.ValidationWarnings,
		m.RenderErrorsTotal,
		m.RenderDuration,
		m.ExtensionsLoaded,
	)

	return m
}

// Registry returns the Prometheus registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResults records the outcome of a render run
func (m *Metrics) RecordResults(results []docs.Result, duration time.Duration) {
	for _, res := range results {
		switch {
		case res.Hidden:
			m.FilesTotal.WithLabelValues("hidden").Inc()
		case res.Orphan:
			m.FilesTotal.WithLabelValues("orphan").Inc()
		default:
			m.FilesTotal.WithLabelValues("rendered").Inc()
		}
		m.ValidationWarnings.Add(float64(res.Warnings))
	}
	m.RenderDuration.Observe(duration.Seconds())
}

// RecordError records a failed render run, labelled by the kind of fatal
// condition
func (m *Metrics) RecordError(err error) {
	m.RenderErrorsTotal.WithLabelValues(ErrorKind(err)).Inc()
}

// RecordExtensions records the number of primary and contrib extensions
func (m *Metrics) RecordExtensions(primary, contrib int) {
	m.ExtensionsLoaded.WithLabelValues("primary").Set(float64(primary))
	m.ExtensionsLoaded.WithLabelValues("contrib").Set(float64(contrib))
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// for pickup by the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// ErrorKind returns a short label for a rendering error
func ErrorKind(err error) string {
	var e *docs.Error
	if !errors.As(err, &e) {
		return "other"
	}
	switch {
	case errors.Is(e.Kind, docs.ErrUnknownFieldType):
		return "unknown_field_type"
	case errors.Is(e.Kind, docs.ErrUnknownExtension):
		return "unknown_extension"
	case errors.Is(e.Kind, docs.ErrUnknownExtensionCategory):
		return "unknown_extension_category"
	case errors.Is(e.Kind, docs.ErrUnknownSecurityPosture):
		return "unknown_security_posture"
	case errors.Is(e.Kind, docs.ErrMissingManifestEntry):
		return "missing_manifest_entry"
	case errors.Is(e.Kind, docs.ErrMissingTitle):
		return "missing_title"
	case errors.Is(e.Kind, docs.ErrInvalidRST):
		return "invalid_rst"
	default:
		return "other"
	}
}
