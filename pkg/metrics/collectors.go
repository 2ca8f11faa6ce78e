package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServiceSource состояние генератора на момент сбора метрик
type ServiceSource interface {
	Version() string
	Uptime() time.Duration
	ReportsGenerated() int64
}

// ServiceCollector снимает показатели сервиса отчётов при каждом scrape,
// без фоновых горутин
type ServiceCollector struct {
	src       ServiceSource
	build     *prometheus.Desc
	uptime    *prometheus.Desc
	generated *prometheus.Desc
}

func NewServiceCollector(namespace, subsystem string, src ServiceSource) *ServiceCollector {
	fq := func(name string) string { return prometheus.BuildFQName(namespace, subsystem, name) }
	return &ServiceCollector{
		src:       src,
		build:     prometheus.NewDesc(fq("build_info"), "Report generator build, always 1", []string{"version"}, nil),
		uptime:    prometheus.NewDesc(fq("uptime_seconds"), "Seconds since the report generator started", nil, nil),
		generated: prometheus.NewDesc(fq("reports_generated"), "Documents rendered since start", nil, nil),
	}
}

func (c *ServiceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.build
	ch <- c.uptime
	ch <- c.generated
}

func (c *ServiceCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.build, prometheus.GaugeValue, 1, c.src.Version())
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, c.src.Uptime().Seconds())
	ch <- prometheus.MustNewConstMetric(c.generated, prometheus.CounterValue, float64(c.src.ReportsGenerated()))
}

// RegisterService регистрирует коллектор сервиса. Go runtime и процесс
// отдаются стандартными коллекторами client_golang, если реестр свой.
func RegisterService(reg prometheus.Registerer, namespace, subsystem string, src ServiceSource) error {
	if reg != prometheus.DefaultRegisterer {
		for _, c := range []prometheus.Collector{
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		} {
			if err := reg.Register(c); err != nil {
				return err
			}
		}
	}
	return reg.Register(NewServiceCollector(namespace, subsystem, src))
}

// ObserveRender засекает рендер документа; вызвать возвращённую функцию
// по завершении
func ObserveRender(m *Metrics, report, format string) func() time.Duration {
	if m == nil || m.ReportGenerationDuration == nil {
		return func() time.Duration { return 0 }
	}
	return prometheus.NewTimer(m.ReportGenerationDuration.WithLabelValues(report, format)).ObserveDuration
}

// TrackInFlight увеличивает gauge активных запросов до вызова возвращённой функции
func TrackInFlight(g prometheus.Gauge) func() {
	if g == nil {
		return func() {}
	}
	g.Inc()
	return g.Dec
}
